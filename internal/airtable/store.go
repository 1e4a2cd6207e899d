// internal/airtable/store.go
package airtable

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"sei-core/internal/common/config"
	"sei-core/internal/common/logger"
)

// Store exposes typed accessors over the tables this system reads and writes.
type Store struct {
	client *Client
	cfg    config.AirtableConfig
}

func NewStore(cfg config.AirtableConfig, log logger.Logger) *Store {
	return &Store{
		client: NewClient(cfg, log),
		cfg:    cfg,
	}
}

// Configured reports whether the underlying client holds credentials.
func (s *Store) Configured() bool {
	return s.client.Configured()
}

// Profiles lists every row of the profiles table.
func (s *Store) Profiles(ctx context.Context) ([]Record[ProfileFields], error) {
	return FetchAll[ProfileFields](ctx, s.client, s.cfg.ProfilesTable, nil)
}

// ProfileBySlug returns the profile row matching slug, or nil when absent.
func (s *Store) ProfileBySlug(ctx context.Context, slug string) (*Record[ProfileFields], error) {
	return s.firstProfile(ctx, fmt.Sprintf(`{slug} = "%s"`, escapeFormulaValue(slug)))
}

// ProfileByProfileID returns the profile row matching the public profile_id
// column, or nil when absent.
func (s *Store) ProfileByProfileID(ctx context.Context, profileID string) (*Record[ProfileFields], error) {
	return s.firstProfile(ctx, fmt.Sprintf(`{profile_id} = "%s"`, escapeFormulaValue(profileID)))
}

func (s *Store) firstProfile(ctx context.Context, formula string) (*Record[ProfileFields], error) {
	params := url.Values{}
	params.Set("filterByFormula", formula)
	params.Set("maxRecords", "1")
	records, err := FetchAll[ProfileFields](ctx, s.client, s.cfg.ProfilesTable, params)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// AgentProfiles lists every non-draft profile for agent-facing search.
func (s *Store) AgentProfiles(ctx context.Context) ([]Record[ProfileFields], error) {
	params := url.Values{}
	params.Set("filterByFormula", `{status} != "Draft"`)
	return FetchAll[ProfileFields](ctx, s.client, s.cfg.ProfilesTable, params)
}

// Records lists every row of the experience records table. Filtering by
// profile happens client-side: the store's ARRAYJOIN over linked fields
// yields display values rather than record IDs, so a FIND() formula cannot
// match a linked record ID.
func (s *Store) Records(ctx context.Context) ([]Record[RecordFields], error) {
	return FetchAll[RecordFields](ctx, s.client, s.cfg.RecordsTable, nil)
}

// DimensionScores lists every row of the per-dimension scores table.
// Same client-side filtering constraint as Records.
func (s *Store) DimensionScores(ctx context.Context) ([]Record[DimensionScoreFields], error) {
	return FetchAll[DimensionScoreFields](ctx, s.client, s.cfg.ScoresTable, nil)
}

// LeadInput carries the columns written to the inbound leads table.
// ProfileRecordID links the lead to a profile row; ProfileSlug is the
// fallback used by the public form, which knows only the slug.
type LeadInput struct {
	ProfileRecordID string
	ProfileSlug     string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	Postcode        string
	JobDescription  string
	Source          string
}

// CreateLead inserts an inbound lead with lead_status "new" and returns the
// created record ID.
func (s *Store) CreateLead(ctx context.Context, in LeadInput) (string, error) {
	fields := map[string]interface{}{
		"postcode_full":   in.Postcode,
		"job_description": in.JobDescription,
		"lead_status":     "new",
		"source":          in.Source,
	}
	switch {
	case in.ProfileRecordID != "":
		fields["profile"] = []string{in.ProfileRecordID}
	case in.ProfileSlug != "":
		fields["profile"] = in.ProfileSlug
	}
	if in.CustomerName != "" {
		fields["customer_name"] = in.CustomerName
	}
	if in.CustomerEmail != "" {
		fields["customer_email"] = in.CustomerEmail
	}
	if in.CustomerPhone != "" {
		fields["customer_phone"] = in.CustomerPhone
	}
	return s.client.CreateRecord(ctx, s.cfg.LeadsTable, fields)
}

func escapeFormulaValue(v string) string {
	return strings.ReplaceAll(v, `"`, `\"`)
}
