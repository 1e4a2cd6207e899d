// internal/search/service_test.go
package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sei-core/internal/airtable"
	"sei-core/internal/common/logger"
	"sei-core/internal/models"
)

type stubSource struct {
	rows []airtable.Record[airtable.ProfileFields]
}

func (s *stubSource) AgentProfiles(ctx context.Context) ([]airtable.Record[airtable.ProfileFields], error) {
	return s.rows, nil
}

func catalogRow(profileID, name, slug, category string, tags, areas []string, basedIn string) airtable.Record[airtable.ProfileFields] {
	return airtable.Record[airtable.ProfileFields]{
		ID: "rec-" + slug,
		Fields: airtable.ProfileFields{
			ProfileID:    profileID,
			Name:         name,
			Slug:         slug,
			Category:     category,
			Tags:         tags,
			AreasCovered: areas,
			BasedIn:      basedIn,
		},
	}
}

func boilerCatalog() *stubSource {
	return &stubSource{rows: []airtable.Record[airtable.ProfileFields]{
		catalogRow("sei-thermo", "Thermoflow", "thermoflow", "Heating & Plumbing",
			[]string{"boiler installation", "boiler repair", "central heating"},
			[]string{"South London", "Croydon"}, "London"),
		catalogRow("sei-apex", "Apex Boilers", "apex-boilers", "Heating & Plumbing",
			[]string{"boiler installation"},
			[]string{"Manchester"}, "Manchester"),
		catalogRow("sei-sparks", "BrightSpark", "brightspark", "Electrical",
			[]string{"rewiring", "fuse boards"},
			[]string{"South London"}, "London"),
	}}
}

func TestSearchRanking(t *testing.T) {
	svc := NewService(boilerCatalog(), logger.NewTestLogger(t))

	results, err := svc.Search(context.Background(), "boiler installation", "croydon", 10)
	require.NoError(t, err)
	require.Len(t, results, 2, "zero-score profiles are excluded")

	// Thermoflow: phrase tag +3, two keyword hits +4, no category hit = 7
	assert.Equal(t, "sei-thermo", results[0].CompanyID)
	assert.Equal(t, 7, results[0].RelevanceScore)
	assert.Equal(t, models.MatchDirect, results[0].MatchType)
	assert.True(t, results[0].LocationMatch)

	assert.Equal(t, "sei-apex", results[1].CompanyID)
	assert.Equal(t, 7, results[1].RelevanceScore)
	assert.False(t, results[1].LocationMatch)
	assert.Equal(t, "/profiles/apex-boilers", results[1].ProfileURL)
}

func TestSearchCategoryOnlyMatch(t *testing.T) {
	svc := NewService(boilerCatalog(), logger.NewTestLogger(t))

	results, err := svc.Search(context.Background(), "electrical", "", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "sei-sparks", results[0].CompanyID)
	assert.Equal(t, models.MatchCategory, results[0].MatchType)
	assert.Equal(t, 1, results[0].RelevanceScore)
}

func TestSearchBaseLocationIsNotALocationMatch(t *testing.T) {
	svc := NewService(boilerCatalog(), logger.NewTestLogger(t))

	// "london" matches Thermoflow's covered areas ("South London") but for
	// Apex only the base location would match, which does not count.
	results, err := svc.Search(context.Background(), "boiler", "london", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "sei-thermo", results[0].CompanyID)
	assert.True(t, results[0].LocationMatch)
	assert.False(t, results[1].LocationMatch)
}

func TestSearchTieBreakByName(t *testing.T) {
	svc := NewService(&stubSource{rows: []airtable.Record[airtable.ProfileFields]{
		catalogRow("sei-b", "zeta heating", "zeta", "Heating", []string{"boiler"}, nil, ""),
		catalogRow("sei-a", "Alpha Heating", "alpha", "Heating", []string{"boiler"}, nil, ""),
	}}, logger.NewNoOpLogger())

	results, err := svc.Search(context.Background(), "boiler", "", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Alpha Heating", results[0].Name)
	assert.Equal(t, "zeta heating", results[1].Name)
}

func TestSearchLimit(t *testing.T) {
	svc := NewService(boilerCatalog(), logger.NewNoOpLogger())

	results, err := svc.Search(context.Background(), "boiler", "", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 10},
		{-5, 1},
		{1, 1},
		{25, 25},
		{50, 50},
		{500, 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampLimit(tt.in))
	}
}
