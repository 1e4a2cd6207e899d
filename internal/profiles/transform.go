// internal/profiles/transform.go
package profiles

import (
	"math"
	"strings"
	"time"

	"sei-core/internal/airtable"
	"sei-core/internal/models"
)

// Dimension names as they appear in the rds_id composite key.
const (
	dimProduct      = "product"
	dimInstallation = "installation"
	dimProcess      = "process"
	dimRecommend    = "recommend"
)

// roundHalfUp1 rounds to one decimal place with half-up tie-breaking, the
// convention used for published overall scores (6.65 -> 6.7).
func roundHalfUp1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// roundHalfUp rounds to the nearest integer, half up.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func splitCSV(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// formatDateRange renders "Jan–Mar 2025" from two ISO dates, or a
// "Mar 2025" style fallback from the last-updated timestamp.
func formatDateRange(start, end, lastUpdated string) string {
	startDate, errS := parseISODate(start)
	endDate, errE := parseISODate(end)
	if errS == nil && errE == nil {
		return startDate.Format("Jan") + "–" + endDate.Format("Jan 2006")
	}
	if updated, err := parseISODate(lastUpdated); err == nil {
		return updated.Format("Jan 2006")
	}
	return ""
}

func parseISODate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func toProfile(rec airtable.Record[airtable.ProfileFields]) models.Profile {
	f := rec.Fields
	p := models.Profile{
		ProfileID:    f.ProfileID,
		Slug:         f.Slug,
		BusinessName: f.Name,
		Location:     f.BasedIn,
		Category:     f.Category,
		Tags:         orEmpty(f.Tags),
		OverallScore: f.OverallScoreAvg,
		SampleSize:   f.SampleSize,
		DateRange:    formatDateRange(f.DateRangeStart, f.DateRangeEnd, f.LastUpdatedAt),
		Summary:      f.Summary,
		Scores: models.DimensionScores{
			ProductSatisfaction:      f.ScoreProduct,
			InstallationSatisfaction: f.ScoreInstallation,
			ProcessCommunication:     f.ScoreCommunication,
			LikelihoodToRecommend:    f.ScoreRecommend,
		},
		ConsistencySignals: models.ConsistencySignals{
			HighScorePercentage: f.Pct8Plus,
			RecommendationRate:  f.RecommendationRate,
			TopThemes:           splitCSV(f.TopThemes),
		},
		CustomerVoice:    parseQuotes(f.PublicQuotes),
		LogoURL:          f.LogoURL,
		Website:          f.WebsiteURL,
		ShortDescription: f.ShortDescription,
		Services:         splitCSV(f.Services),
		BaseLocation:     f.BasedIn,
		AreasCovered:     orEmpty(f.AreasCovered),
	}
	if f.Platform1Name != "" || f.Platform2Name != "" {
		p.ExternalPresence = &models.ExternalPresence{
			Platform1Name:        f.Platform1Name,
			Platform1ReviewCount: f.Platform1ReviewCount,
			Platform1URL:         f.Platform1URL,
			Platform2Name:        f.Platform2Name,
			Platform2ReviewCount: f.Platform2ReviewCount,
			Platform2URL:         f.Platform2URL,
		}
	}
	return p
}

func toProfileSummary(rec airtable.Record[airtable.ProfileFields]) models.ProfileSummary {
	f := rec.Fields
	short := f.ShortDescription
	if short == "" && f.Summary != "" {
		short = truncateRunes(f.Summary, 120) + "..."
	}
	return models.ProfileSummary{
		ProfileID:        f.ProfileID,
		Slug:             f.Slug,
		BusinessName:     f.Name,
		Location:         f.BasedIn,
		Category:         f.Category,
		Tags:             orEmpty(f.Tags),
		OverallScore:     f.OverallScoreAvg,
		SampleSize:       f.SampleSize,
		DateRange:        formatDateRange(f.DateRangeStart, f.DateRangeEnd, f.LastUpdatedAt),
		LogoURL:          f.LogoURL,
		ShortDescription: short,
		Website:          f.WebsiteURL,
	}
}

// toExperienceRecord maps one raw record plus its per-dimension scores.
// When no recommend dimension score exists, the checkbox stands in (10 or 0).
// The company action note survives only when non-empty after trimming AND
// explicitly approved; a missing approval flag means not approved.
func toExperienceRecord(rec airtable.Record[airtable.RecordFields], dims map[string]float64) models.ExperienceRecord {
	f := rec.Fields
	date := f.ExperienceDate
	if date == "" {
		date = f.ExperienceMonth
	}
	label := f.CustomerLabel
	if label == "" {
		label = "Verified Customer"
	}

	recommendRating, ok := dims[dimRecommend]
	if !ok && f.Recommended.Bool() {
		recommendRating = 10
	}

	out := models.ExperienceRecord{
		CustomerLabel: label,
		Date:          date,
		OverallScore:  f.OverallScore,
		SummaryPublic: f.RecordSummaryPublic,
		Sentiment:     models.SentimentForScore(f.OverallScore),
		Tags:          []string{},
		Ratings: models.DimensionScores{
			ProductSatisfaction:      dims[dimProduct],
			InstallationSatisfaction: dims[dimInstallation],
			ProcessCommunication:     dims[dimProcess],
			LikelihoodToRecommend:    recommendRating,
		},
	}

	if note := strings.TrimSpace(f.CompanyActionNote); note != "" && f.CompanyActionNoteApproved.Bool() {
		out.CompanyActionNote = note
		out.CompanyActionNoteApproved = true
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
