// internal/profiles/service_test.go
package profiles

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sei-core/internal/airtable"
	"sei-core/internal/common/logger"
	"sei-core/internal/models"
)

type stubSource struct {
	profiles []airtable.Record[airtable.ProfileFields]
	records  []airtable.Record[airtable.RecordFields]
	scores   []airtable.Record[airtable.DimensionScoreFields]

	profileCalls int
	recordCalls  int
}

func (s *stubSource) Profiles(ctx context.Context) ([]airtable.Record[airtable.ProfileFields], error) {
	s.profileCalls++
	return s.profiles, nil
}

func (s *stubSource) ProfileBySlug(ctx context.Context, slug string) (*airtable.Record[airtable.ProfileFields], error) {
	s.profileCalls++
	for i := range s.profiles {
		if s.profiles[i].Fields.Slug == slug {
			return &s.profiles[i], nil
		}
	}
	return nil, nil
}

func (s *stubSource) Records(ctx context.Context) ([]airtable.Record[airtable.RecordFields], error) {
	s.recordCalls++
	return s.records, nil
}

func (s *stubSource) DimensionScores(ctx context.Context) ([]airtable.Record[airtable.DimensionScoreFields], error) {
	return s.scores, nil
}

func fptr(v float64) *float64 { return &v }

func newTestService(t *testing.T, source Source) *Service {
	t.Helper()
	return NewService(source, 5*time.Minute, logger.NewTestLogger(t))
}

func profileRow(id, slug, name string) airtable.Record[airtable.ProfileFields] {
	return airtable.Record[airtable.ProfileFields]{
		ID: id,
		Fields: airtable.ProfileFields{
			ProfileID: "sei-" + slug,
			Slug:      slug,
			Name:      name,
			Category:  "Heating & Plumbing",
			BasedIn:   "London",
			// Stored aggregates deliberately wrong so tests prove recomputation
			OverallScoreAvg: 9.9,
			SampleSize:      99,
		},
	}
}

func TestDetailRecomputesAggregates(t *testing.T) {
	source := &stubSource{
		profiles: []airtable.Record[airtable.ProfileFields]{profileRow("recP1", "thermoflow", "Thermoflow")},
		records: []airtable.Record[airtable.RecordFields]{
			{ID: "recR1", Fields: airtable.RecordFields{Profile: []string{"recP1"}, OverallScore: 9, Recommended: airtable.FlexBool(true)}},
			{ID: "recR2", Fields: airtable.RecordFields{Profile: []string{"recP1"}, OverallScore: 7, Recommended: airtable.FlexBool(true)}},
			{ID: "recR3", Fields: airtable.RecordFields{Profile: []string{"recP1"}, OverallScore: 4}},
			// Linked to a different profile: must not contribute
			{ID: "recR4", Fields: airtable.RecordFields{Profile: []string{"recP2"}, OverallScore: 1}},
		},
		scores: []airtable.Record[airtable.DimensionScoreFields]{
			{ID: "recS1", Fields: airtable.DimensionScoreFields{RDSID: "recR1::product", Record: []string{"recR1"}, Profile: []string{"recP1"}, Score: fptr(9)}},
			{ID: "recS2", Fields: airtable.DimensionScoreFields{RDSID: "recR2::product", Record: []string{"recR2"}, Profile: []string{"recP1"}, Score: fptr(6)}},
			{ID: "recS3", Fields: airtable.DimensionScoreFields{RDSID: "recR1::process", Record: []string{"recR1"}, Profile: []string{"recP1"}, Score: fptr(8)}},
			{ID: "recS4", Fields: airtable.DimensionScoreFields{RDSID: "recR4::product", Record: []string{"recR4"}, Profile: []string{"recP2"}, Score: fptr(1)}},
		},
	}
	svc := newTestService(t, source)

	profile, err := svc.Detail(context.Background(), "thermoflow")
	require.NoError(t, err)
	require.NotNil(t, profile)

	// (9+7+4)/3 = 6.666... rounds half-up to 6.7
	assert.Equal(t, 6.7, profile.OverallScore)
	assert.Equal(t, 3, profile.SampleSize)
	assert.Equal(t, 7.5, profile.Scores.ProductSatisfaction)
	assert.Equal(t, 8.0, profile.Scores.ProcessCommunication)
	assert.Equal(t, 0.0, profile.Scores.InstallationSatisfaction)
	// 1 of 3 records scored >= 8
	assert.Equal(t, 33.0, profile.ConsistencySignals.HighScorePercentage)
	assert.Equal(t, 67.0, profile.ConsistencySignals.RecommendationRate)
}

func TestDetailAbsentSlug(t *testing.T) {
	svc := newTestService(t, &stubSource{})
	profile, err := svc.Detail(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestDetailNoRecordsNoNaN(t *testing.T) {
	source := &stubSource{
		profiles: []airtable.Record[airtable.ProfileFields]{profileRow("recP1", "thermoflow", "Thermoflow")},
	}
	svc := newTestService(t, source)

	profile, err := svc.Detail(context.Background(), "thermoflow")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, 0.0, profile.OverallScore)
	assert.Equal(t, 0, profile.SampleSize)
	assert.Equal(t, 0.0, profile.ConsistencySignals.HighScorePercentage)
	assert.Equal(t, 0.0, profile.Scores.LikelihoodToRecommend)
}

func TestDetailCached(t *testing.T) {
	source := &stubSource{
		profiles: []airtable.Record[airtable.ProfileFields]{profileRow("recP1", "thermoflow", "Thermoflow")},
	}
	svc := newTestService(t, source)

	_, err := svc.Detail(context.Background(), "thermoflow")
	require.NoError(t, err)
	callsAfterFirst := source.profileCalls

	_, err = svc.Detail(context.Background(), "thermoflow")
	require.NoError(t, err)
	assert.Equal(t, callsAfterFirst, source.profileCalls)

	svc.Invalidate("thermoflow")
	_, err = svc.Detail(context.Background(), "thermoflow")
	require.NoError(t, err)
	assert.Greater(t, source.profileCalls, callsAfterFirst)
}

func TestRecordsForProfileOrderingAndSentiment(t *testing.T) {
	source := &stubSource{
		profiles: []airtable.Record[airtable.ProfileFields]{profileRow("recP1", "thermoflow", "Thermoflow")},
		records: []airtable.Record[airtable.RecordFields]{
			{ID: "recR1", Fields: airtable.RecordFields{Profile: []string{"recP1"}, ExperienceDate: "2025-02-10", OverallScore: 8}},
			{ID: "recR2", Fields: airtable.RecordFields{Profile: []string{"recP1"}, OverallScore: 5}},
			{ID: "recR3", Fields: airtable.RecordFields{Profile: []string{"recP1"}, ExperienceDate: "2025-06-01", OverallScore: 4, Recommended: airtable.FlexBool(true)}},
		},
		scores: []airtable.Record[airtable.DimensionScoreFields]{
			{ID: "recS1", Fields: airtable.DimensionScoreFields{RDSID: "recR1::recommend", Record: []string{"recR1"}, Profile: []string{"recP1"}, Score: fptr(9)}},
		},
	}
	svc := newTestService(t, source)

	records, err := svc.RecordsForProfile(context.Background(), "thermoflow")
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Date descending, empty date last
	assert.Equal(t, "2025-06-01", records[0].Date)
	assert.Equal(t, "2025-02-10", records[1].Date)
	assert.Equal(t, "", records[2].Date)

	assert.Equal(t, models.SentimentNegative, records[0].Sentiment)
	assert.Equal(t, models.SentimentPositive, records[1].Sentiment)
	assert.Equal(t, models.SentimentMixed, records[2].Sentiment)

	// Dimension score wins over the checkbox; checkbox stands in when absent
	assert.Equal(t, 9.0, records[1].Ratings.LikelihoodToRecommend)
	assert.Equal(t, 10.0, records[0].Ratings.LikelihoodToRecommend)
	assert.Equal(t, 0.0, records[2].Ratings.LikelihoodToRecommend)

	assert.Equal(t, "Verified Customer", records[0].CustomerLabel)
}

func TestActionNoteFailsClosed(t *testing.T) {
	tests := []struct {
		name     string
		note     string
		approved bool
		want     string
	}{
		{"approved and present", "We replaced the valve free of charge.", true, "We replaced the valve free of charge."},
		{"present but not approved", "We replaced the valve free of charge.", false, ""},
		{"approved but blank", "   ", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := airtable.Record[airtable.RecordFields]{
				ID: "recR1",
				Fields: airtable.RecordFields{
					CompanyActionNote:         tt.note,
					CompanyActionNoteApproved: airtable.FlexBool(tt.approved),
				},
			}
			got := toExperienceRecord(rec, nil)
			assert.Equal(t, tt.want, got.CompanyActionNote)
			assert.Equal(t, tt.want != "", got.CompanyActionNoteApproved)
		})
	}
}

func TestSummariesSortedCaseInsensitive(t *testing.T) {
	source := &stubSource{
		profiles: []airtable.Record[airtable.ProfileFields]{
			profileRow("recP1", "zen-heating", "zen heating"),
			profileRow("recP2", "apex", "Apex Boilers"),
			profileRow("recP3", "brightspark", "brightSpark"),
		},
	}
	svc := newTestService(t, source)

	summaries, err := svc.Summaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "Apex Boilers", summaries[0].BusinessName)
	assert.Equal(t, "brightSpark", summaries[1].BusinessName)
	assert.Equal(t, "zen heating", summaries[2].BusinessName)
}

func TestFilter(t *testing.T) {
	p1 := profileRow("recP1", "thermoflow", "Thermoflow")
	p1.Fields.OverallScoreAvg = 8.4
	p1.Fields.SampleSize = 12
	p2 := profileRow("recP2", "apex", "Apex Boilers")
	p2.Fields.OverallScoreAvg = 6.1
	p2.Fields.SampleSize = 3
	p2.Fields.BasedIn = "Manchester"
	source := &stubSource{profiles: []airtable.Record[airtable.ProfileFields]{p1, p2}}
	svc := newTestService(t, source)

	minScore := 7.0
	minSample := 5
	tests := []struct {
		name   string
		params FilterParams
		want   []string
	}{
		{"no filters", FilterParams{}, []string{"Apex Boilers", "Thermoflow"}},
		{"location substring", FilterParams{Location: "london"}, []string{"Thermoflow"}},
		{"min score", FilterParams{MinScore: &minScore}, []string{"Thermoflow"}},
		{"min sample", FilterParams{MinSample: &minSample}, []string{"Thermoflow"}},
		{"category", FilterParams{Category: "heating"}, []string{"Apex Boilers", "Thermoflow"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Filter(context.Background(), tt.params)
			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, p := range got {
				names = append(names, p.BusinessName)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestParseQuotes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []models.Quote
	}{
		{
			name:  "json objects",
			input: `[{"quote":"Great work","name":"Sarah"},{"text":"On time","name":""}]`,
			want: []models.Quote{
				{Quote: "Great work", Name: "Sarah"},
				{Quote: "On time", Name: "Verified Customer"},
			},
		},
		{
			name:  "json strings",
			input: `["Spotless finish"]`,
			want:  []models.Quote{{Quote: "Spotless finish", Name: "Verified Customer"}},
		},
		{
			name:  "quoted lines with dash",
			input: "\"Fast and tidy\" - Sarah\n\"Would use again\" – Tom",
			want: []models.Quote{
				{Quote: "Fast and tidy", Name: "Sarah"},
				{Quote: "Would use again", Name: "Tom"},
			},
		},
		{
			name:  "unparsable line falls back to anonymous",
			input: `"Just a quote with no attribution"`,
			want:  []models.Quote{{Quote: "Just a quote with no attribution", Name: "Verified Customer"}},
		},
		{
			name:  "empty",
			input: "",
			want:  []models.Quote{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseQuotes(tt.input))
		})
	}
}

func TestFormatDateRange(t *testing.T) {
	tests := []struct {
		name        string
		start, end  string
		lastUpdated string
		want        string
	}{
		{"full range", "2025-01-05", "2025-03-20", "", "Jan–Mar 2025"},
		{"fallback to last updated", "", "", "2025-03-20", "Mar 2025"},
		{"nothing available", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDateRange(tt.start, tt.end, tt.lastUpdated))
		})
	}
}
