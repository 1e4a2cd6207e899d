// internal/intake/validation.go
package intake

import (
	"encoding/json"
	"regexp"
	"strings"

	stderrors "sei-core/internal/common/errors"
	"sei-core/internal/common/validation"
	"sei-core/internal/models"
)

var ukPostcodeRe = regexp.MustCompile(`(?i)^[A-Z]{1,2}\d[A-Z\d]?\s*\d[A-Z]{2}$`)

var minOne = 1

// agentPayloadSchema covers the structural layer of agent validation: the
// three top-level fields and their types. Content rules (postcode format,
// contact presence, non-blank description) are checked separately so the
// reported field names carry the reason.
var agentPayloadSchema = validation.JSONSchema{
	Type:                 "object",
	AdditionalProperties: true,
	Required:             []string{"company_id", "customer", "job"},
	Properties: map[string]validation.Property{
		"company_id": {Type: "string", MinLength: &minOne},
		"customer":   {Type: "object"},
		"job":        {Type: "object"},
		"source":     {Type: "object"},
	},
}

// ValidateAgentPayload parses and validates an agent submission body.
// Violations aggregate into a single VALIDATION_ERROR naming every
// missing or invalid field.
func ValidateAgentPayload(body []byte) (*models.AgentQuoteRequest, *stderrors.StandardError) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, stderrors.NewValidationMessageError("Request body must be a JSON object", []string{"body"})
	}

	fields := []string{}
	result := validation.ValidateInput(raw, agentPayloadSchema)
	for _, violation := range result.Errors {
		fields = appendUnique(fields, violation.Field)
	}

	payload := decodeAgentPayload(raw)

	if _, ok := raw["customer"].(map[string]interface{}); ok {
		postcode := strings.TrimSpace(payload.Customer.PostcodeFull)
		if postcode == "" {
			fields = appendUnique(fields, "customer.postcode_full")
		} else if !ukPostcodeRe.MatchString(postcode) {
			fields = appendUnique(fields, "customer.postcode_full (invalid UK postcode format)")
		}
		if payload.Customer.Email == "" && payload.Customer.Phone == "" {
			fields = appendUnique(fields, "customer.email or customer.phone (at least one required)")
		}
	}

	if _, ok := raw["job"].(map[string]interface{}); ok {
		if strings.TrimSpace(payload.Job.Description) == "" {
			fields = appendUnique(fields, "job.description")
		}
	}

	if len(fields) > 0 {
		return nil, stderrors.NewValidationError(fields)
	}
	return payload, nil
}

// decodeAgentPayload extracts string fields from the parsed body without
// failing on mistyped values; the schema pass has already flagged those.
func decodeAgentPayload(raw map[string]interface{}) *models.AgentQuoteRequest {
	payload := &models.AgentQuoteRequest{}
	payload.CompanyID, _ = raw["company_id"].(string)

	if customer, ok := raw["customer"].(map[string]interface{}); ok {
		payload.Customer.Name, _ = customer["name"].(string)
		payload.Customer.Email, _ = customer["email"].(string)
		payload.Customer.Phone, _ = customer["phone"].(string)
		payload.Customer.PostcodeFull, _ = customer["postcode_full"].(string)
	}
	if job, ok := raw["job"].(map[string]interface{}); ok {
		payload.Job.Description, _ = job["description"].(string)
	}
	if source, ok := raw["source"].(map[string]interface{}); ok {
		payload.Source = &models.AgentSource{}
		payload.Source.AgentName, _ = source["agent_name"].(string)
		payload.Source.AgentRef, _ = source["agent_ref"].(string)
	}
	return payload
}

// ValidatePublicPayload checks the public form submission. Unlike the agent
// path it reports only the first violation, in form-friendly wording.
func ValidatePublicPayload(req models.PublicQuoteRequest) *stderrors.StandardError {
	switch {
	case req.ProfileSlug == "":
		return stderrors.NewValidationMessageError("profile_slug is required", []string{"profile_slug"})
	case len(req.Postcode) < 3:
		return stderrors.NewValidationMessageError("Valid postcode is required", []string{"postcode"})
	case req.ServiceType == "":
		return stderrors.NewValidationMessageError("service_type is required", []string{"service_type"})
	case req.Email == "" && req.Phone == "":
		return stderrors.NewValidationMessageError("Email or phone is required", []string{"email", "phone"})
	default:
		return nil
	}
}

func appendUnique(fields []string, field string) []string {
	for _, f := range fields {
		if f == field {
			return fields
		}
	}
	return append(fields, field)
}
