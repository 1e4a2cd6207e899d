// internal/intake/validation_test.go
package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "sei-core/internal/common/errors"
	"sei-core/internal/models"
)

func TestValidateAgentPayloadAggregatesAllErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{
			name:       "empty object",
			body:       `{}`,
			wantFields: []string{"company_id", "customer", "job"},
		},
		{
			name: "invalid postcode and missing contact",
			body: `{"company_id":"sei-thermo","customer":{"postcode_full":"NOT A CODE"},"job":{"description":"Boiler service"}}`,
			wantFields: []string{
				"customer.postcode_full (invalid UK postcode format)",
				"customer.email or customer.phone (at least one required)",
			},
		},
		{
			name:       "blank description",
			body:       `{"company_id":"sei-thermo","customer":{"postcode_full":"SW11 2AB","email":"a@b.c"},"job":{"description":"   "}}`,
			wantFields: []string{"job.description"},
		},
		{
			name:       "empty company id",
			body:       `{"company_id":"","customer":{"postcode_full":"SW11 2AB","email":"a@b.c"},"job":{"description":"Fix"}}`,
			wantFields: []string{"company_id"},
		},
		{
			name:       "mistyped company id",
			body:       `{"company_id":42,"customer":{"postcode_full":"SW11 2AB","email":"a@b.c"},"job":{"description":"Fix"}}`,
			wantFields: []string{"company_id"},
		},
		{
			name:       "missing postcode",
			body:       `{"company_id":"sei-thermo","customer":{"email":"a@b.c"},"job":{"description":"Fix"}}`,
			wantFields: []string{"customer.postcode_full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, verr := ValidateAgentPayload([]byte(tt.body))
			assert.Nil(t, payload)
			require.NotNil(t, verr)
			assert.Equal(t, stderrors.ErrCodeValidationError, verr.Code)
			assert.Equal(t, tt.wantFields, verr.Fields)
		})
	}
}

func TestValidateAgentPayloadMalformedBody(t *testing.T) {
	for _, body := range []string{"not json", "null", `["array"]`, ""} {
		payload, verr := ValidateAgentPayload([]byte(body))
		assert.Nil(t, payload)
		require.NotNil(t, verr, "body %q", body)
		assert.Equal(t, "Request body must be a JSON object", verr.Message)
		assert.Equal(t, []string{"body"}, verr.Fields)
	}
}

func TestValidateAgentPayloadAcceptsPostcodeVariants(t *testing.T) {
	for _, postcode := range []string{"SW11 2AB", "sw11 2ab", "SW112AB", " E1 6AN ", "EC1A1BB"} {
		body := `{"company_id":"sei-thermo","customer":{"postcode_full":"` + postcode + `","email":"a@b.c"},"job":{"description":"Fix"}}`
		payload, verr := ValidateAgentPayload([]byte(body))
		require.Nil(t, verr, "postcode %q should validate", postcode)
		assert.Equal(t, "sei-thermo", payload.CompanyID)
	}
}

func TestValidateAgentPayloadParsesSource(t *testing.T) {
	body := `{"company_id":"sei-thermo","customer":{"name":"Sarah","postcode_full":"SW11 2AB","phone":"07700900000"},"job":{"description":"Boiler swap"},"source":{"agent_name":"lex","agent_ref":"ref-42"}}`
	payload, verr := ValidateAgentPayload([]byte(body))
	require.Nil(t, verr)
	require.NotNil(t, payload.Source)
	assert.Equal(t, "ref-42", payload.Source.AgentRef)
	assert.Equal(t, "Sarah", payload.Customer.Name)
	assert.Equal(t, "07700900000", payload.Customer.Phone)
}

func TestValidatePublicPayload(t *testing.T) {
	valid := models.PublicQuoteRequest{
		ProfileSlug: "thermoflow",
		Postcode:    "SW11 2AB",
		ServiceType: "boiler-service",
		Email:       "a@b.c",
	}

	tests := []struct {
		name    string
		mutate  func(*models.PublicQuoteRequest)
		wantMsg string
	}{
		{"valid", func(r *models.PublicQuoteRequest) {}, ""},
		{"phone only is fine", func(r *models.PublicQuoteRequest) { r.Email = ""; r.Phone = "07700900000" }, ""},
		{"missing slug", func(r *models.PublicQuoteRequest) { r.ProfileSlug = "" }, "profile_slug is required"},
		{"short postcode", func(r *models.PublicQuoteRequest) { r.Postcode = "SW" }, "Valid postcode is required"},
		{"missing service type", func(r *models.PublicQuoteRequest) { r.ServiceType = "" }, "service_type is required"},
		{"no contact", func(r *models.PublicQuoteRequest) { r.Email = "" }, "Email or phone is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			verr := ValidatePublicPayload(req)
			if tt.wantMsg == "" {
				assert.Nil(t, verr)
			} else {
				require.NotNil(t, verr)
				assert.Equal(t, tt.wantMsg, verr.Message)
			}
		})
	}
}

func TestAuthorizeBearer(t *testing.T) {
	keys := []string{"key-one", "key-two"}

	tests := []struct {
		name   string
		header string
		keys   []string
		wantOK bool
	}{
		{"valid key", "Bearer key-one", keys, true},
		{"valid key with padding", "Bearer  key-two ", keys, true},
		{"unknown key", "Bearer key-three", keys, false},
		{"missing header", "", keys, false},
		{"wrong scheme", "Basic key-one", keys, false},
		{"bare token", "key-one", keys, false},
		{"empty allow-list", "Bearer key-one", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, ok := AuthorizeBearer(tt.header, tt.keys)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.NotEmpty(t, token)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "ref:sei-thermo:ref-42",
		Fingerprint("sei-thermo", "ref-42", "a@b.c", "0770", "SW11 2AB"))
	assert.Equal(t, "contact:sei-thermo:a@b.c:SW11 2AB",
		Fingerprint("sei-thermo", "", "a@b.c", "0770", "SW11 2AB"))
	assert.Equal(t, "contact:sei-thermo:0770:SW11 2AB",
		Fingerprint("sei-thermo", "", "", "0770", "SW11 2AB"))
}
