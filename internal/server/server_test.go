// internal/server/server_test.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sei-core/internal/airtable"
	"sei-core/internal/common/logger"
	"sei-core/internal/intake"
	"sei-core/internal/intake/dedupe"
	"sei-core/internal/intake/ratelimit"
	"sei-core/internal/profiles"
	"sei-core/internal/search"
)

// stubStore backs every service interface in these tests.
type stubStore struct {
	profiles []airtable.Record[airtable.ProfileFields]
	leadIDs  []string
	created  []airtable.LeadInput
}

func (s *stubStore) Profiles(ctx context.Context) ([]airtable.Record[airtable.ProfileFields], error) {
	return s.profiles, nil
}

func (s *stubStore) AgentProfiles(ctx context.Context) ([]airtable.Record[airtable.ProfileFields], error) {
	return s.profiles, nil
}

func (s *stubStore) ProfileBySlug(ctx context.Context, slug string) (*airtable.Record[airtable.ProfileFields], error) {
	for i := range s.profiles {
		if s.profiles[i].Fields.Slug == slug {
			return &s.profiles[i], nil
		}
	}
	return nil, nil
}

func (s *stubStore) ProfileByProfileID(ctx context.Context, profileID string) (*airtable.Record[airtable.ProfileFields], error) {
	for i := range s.profiles {
		if s.profiles[i].Fields.ProfileID == profileID {
			return &s.profiles[i], nil
		}
	}
	return nil, nil
}

func (s *stubStore) Records(ctx context.Context) ([]airtable.Record[airtable.RecordFields], error) {
	return nil, nil
}

func (s *stubStore) DimensionScores(ctx context.Context) ([]airtable.Record[airtable.DimensionScoreFields], error) {
	return nil, nil
}

func (s *stubStore) CreateLead(ctx context.Context, in airtable.LeadInput) (string, error) {
	s.created = append(s.created, in)
	id := "recLead1"
	if len(s.leadIDs) > 0 {
		id, s.leadIDs = s.leadIDs[0], s.leadIDs[1:]
	}
	return id, nil
}

func newTestServer(t *testing.T) (*Server, *stubStore) {
	t.Helper()
	store := &stubStore{
		profiles: []airtable.Record[airtable.ProfileFields]{
			{
				ID: "recP1",
				Fields: airtable.ProfileFields{
					ProfileID: "sei-thermo",
					Name:      "Thermoflow",
					Slug:      "thermoflow",
					Category:  "Heating & Plumbing",
					Tags:      []string{"boiler installation"},
					BasedIn:   "London",
				},
			},
		},
	}

	cfg := intake.DefaultConfig()
	cfg.AgentKeys = []string{"key-one"}
	log := logger.NewTestLogger(t)

	intakeSvc := intake.NewService(store, ratelimit.NewMemoryLimiter(),
		dedupe.NewMemoryStore(24*time.Hour), cfg, nil, log)

	srv := New(Deps{
		Intake:           intakeSvc,
		Profiles:         profiles.NewService(store, 5*time.Minute, log),
		Search:           search.NewService(store, log),
		Logger:           log,
		SiteBaseURL:      "https://example.com",
		RevalidateSecret: "shhh",
	})
	return srv, store
}

func doRequest(t *testing.T, srv *Server, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestAgentQuoteRequestEndpoint(t *testing.T) {
	body := `{"company_id":"sei-thermo","customer":{"email":"a@b.c","postcode_full":"SW11 2AB"},"job":{"description":"Boiler swap"}}`

	t.Run("unauthorized", func(t *testing.T) {
		srv, _ := newTestServer(t)
		rec := doRequest(t, srv, http.MethodPost, "/api/agent/quote-requests", body, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		payload := decodeBody(t, rec)
		assert.Equal(t, false, payload["ok"])
		errBlock := payload["error"].(map[string]interface{})
		assert.Equal(t, "UNAUTHORIZED", errBlock["code"])
	})

	t.Run("validation error lists fields", func(t *testing.T) {
		srv, _ := newTestServer(t)
		rec := doRequest(t, srv, http.MethodPost, "/api/agent/quote-requests", `{}`,
			map[string]string{"Authorization": "Bearer key-one"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		errBlock := decodeBody(t, rec)["error"].(map[string]interface{})
		assert.Equal(t, "VALIDATION_ERROR", errBlock["code"])
		assert.Len(t, errBlock["fields"], 3)
	})

	t.Run("success", func(t *testing.T) {
		srv, store := newTestServer(t)
		rec := doRequest(t, srv, http.MethodPost, "/api/agent/quote-requests", body,
			map[string]string{"Authorization": "Bearer key-one"})
		require.Equal(t, http.StatusOK, rec.Code)
		payload := decodeBody(t, rec)
		assert.Equal(t, true, payload["ok"])
		assert.Equal(t, false, payload["deduped"])
		assert.Equal(t, "recLead1", payload["lead_id"])
		company := payload["company"].(map[string]interface{})
		assert.Equal(t, "/profiles/thermoflow", company["profile_url"])
		require.Len(t, store.created, 1)
		assert.Equal(t, "recP1", store.created[0].ProfileRecordID)
	})

	t.Run("unknown company", func(t *testing.T) {
		srv, _ := newTestServer(t)
		unknown := strings.Replace(body, "sei-thermo", "sei-ghost", 1)
		rec := doRequest(t, srv, http.MethodPost, "/api/agent/quote-requests", unknown,
			map[string]string{"Authorization": "Bearer key-one"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPublicQuoteRequestEndpoint(t *testing.T) {
	body := `{"profile_slug":"thermoflow","postcode":"SW11 2AB","service_type":"boiler-service","email":"a@b.c"}`

	t.Run("success", func(t *testing.T) {
		srv, store := newTestServer(t)
		rec := doRequest(t, srv, http.MethodPost, "/api/quote-requests", body, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decodeBody(t, rec)["success"])
		require.Len(t, store.created, 1)
		assert.Equal(t, "website", store.created[0].Source)
	})

	t.Run("invalid json", func(t *testing.T) {
		srv, _ := newTestServer(t)
		rec := doRequest(t, srv, http.MethodPost, "/api/quote-requests", "not json", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		srv, _ := newTestServer(t)
		rec := doRequest(t, srv, http.MethodPost, "/api/quote-requests", `{"profile_slug":"x"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Valid postcode is required", decodeBody(t, rec)["error"])
	})

	t.Run("rate limited", func(t *testing.T) {
		srv, _ := newTestServer(t)
		for i := 0; i < 5; i++ {
			rec := doRequest(t, srv, http.MethodPost, "/api/quote-requests", body, nil)
			require.Equal(t, http.StatusOK, rec.Code)
		}
		rec := doRequest(t, srv, http.MethodPost, "/api/quote-requests", body, nil)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("rate limited before decoding", func(t *testing.T) {
		srv, _ := newTestServer(t)
		for i := 0; i < 5; i++ {
			rec := doRequest(t, srv, http.MethodPost, "/api/quote-requests", body, nil)
			require.Equal(t, http.StatusOK, rec.Code)
		}
		// Over quota, a malformed body still gets the limiter's answer.
		rec := doRequest(t, srv, http.MethodPost, "/api/quote-requests", "not json", nil)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestProfileEndpoints(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		srv, _ := newTestServer(t)
		rec := doRequest(t, srv, http.MethodGet, "/api/profiles?category=heating", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		payload := decodeBody(t, rec)
		assert.Equal(t, float64(1), payload["count"])
	})

	t.Run("detail found", func(t *testing.T) {
		srv, _ := newTestServer(t)
		rec := doRequest(t, srv, http.MethodGet, "/api/profiles/thermoflow", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		payload := decodeBody(t, rec)
		profile := payload["profile"].(map[string]interface{})
		assert.Equal(t, "Thermoflow", profile["businessName"])
		assert.Contains(t, payload, "records")
	})

	t.Run("detail missing", func(t *testing.T) {
		srv, _ := newTestServer(t)
		rec := doRequest(t, srv, http.MethodGet, "/api/profiles/nope", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Profile not found", decodeBody(t, rec)["error"])
	})
}

func TestSearchEndpoint(t *testing.T) {
	t.Run("missing query", func(t *testing.T) {
		srv, _ := newTestServer(t)
		rec := doRequest(t, srv, http.MethodGet, "/api/profiles/search", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		errBlock := decodeBody(t, rec)["error"].(map[string]interface{})
		assert.Equal(t, "query parameter is required", errBlock["message"])
	})

	t.Run("ranked results", func(t *testing.T) {
		srv, _ := newTestServer(t)
		rec := doRequest(t, srv, http.MethodGet, "/api/profiles/search?query=boiler&limit=5", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		payload := decodeBody(t, rec)
		assert.Equal(t, true, payload["ok"])
		assert.Equal(t, "boiler", payload["query"])
		assert.Nil(t, payload["location"])
		results := payload["results"].([]interface{})
		require.Len(t, results, 1)
		first := results[0].(map[string]interface{})
		assert.Equal(t, "sei-thermo", first["company_id"])
		assert.Equal(t, "direct", first["match_type"])
	})
}

func TestRevalidateEndpoint(t *testing.T) {
	t.Run("bad secret", func(t *testing.T) {
		srv, _ := newTestServer(t)
		rec := doRequest(t, srv, http.MethodPost, "/api/revalidate", `{"secret":"wrong"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("flushes cache", func(t *testing.T) {
		srv, _ := newTestServer(t)
		rec := doRequest(t, srv, http.MethodPost, "/api/revalidate", `{"secret":"shhh","slug":"thermoflow"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		payload := decodeBody(t, rec)
		assert.Equal(t, true, payload["revalidated"])
		assert.Equal(t, "thermoflow", payload["slug"])
	})
}

func TestSitemap(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/sitemap.xml", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<loc>https://example.com/profiles/thermoflow</loc>")
	assert.Contains(t, body, "<priority>1.0</priority>")
}
