// internal/airtable/fields.go
package airtable

import (
	"bytes"
	"encoding/json"
	"strings"
)

// StringList normalises fields that Airtable returns either as a
// comma-separated string (single-line text) or as a JSON array
// (multi-select / linked records).
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = nil
		return nil
	}
	if data[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*s = items
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*s = out
	return nil
}

// FlexBool normalises checkbox fields, which Airtable returns as
// true/false or as 1/0 depending on the field configuration.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "true", "1":
		*b = true
	case "false", "0", "null", "":
		*b = false
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*b = f != 0
	}
	return nil
}

func (b FlexBool) Bool() bool { return bool(b) }

// ProfileFields mirrors the column names of the Public Profiles table.
type ProfileFields struct {
	ProfileID            string     `json:"profile_id"`
	Name                 string     `json:"name"`
	Slug                 string     `json:"slug"`
	Status               string     `json:"status"`
	Category             string     `json:"category"`
	FrameworkType        string     `json:"framework_type"`
	BasedIn              string     `json:"based_in"`
	AreasCovered         StringList `json:"areas_covered"`
	WebsiteURL           string     `json:"website_url"`
	LastUpdatedAt        string     `json:"last_updated_at"`
	SampleSize           int        `json:"sample_size"`
	OverallScoreAvg      float64    `json:"overall_score_avg"`
	Count8Plus           int        `json:"count_8_plus"`
	Pct8Plus             float64    `json:"pct_8_plus"`
	CountRecommended     int        `json:"count_recommended"`
	RecommendationRate   float64    `json:"recommendation_rate"`
	Tags                 StringList `json:"Tags"`
	Summary              string     `json:"summary"`
	ShortDescription     string     `json:"short_description"`
	LogoURL              string     `json:"logo_url"`
	DateRangeStart       string     `json:"date_range_start"`
	DateRangeEnd         string     `json:"date_range_end"`
	ScoreProduct         float64    `json:"score_product"`
	ScoreInstallation    float64    `json:"score_installation"`
	ScoreCommunication   float64    `json:"score_communication"`
	ScoreRecommend       float64    `json:"score_recommend"`
	TopThemes            string     `json:"top_themes"`
	PublicQuotes         string     `json:"public_quotes"`
	Services             string     `json:"services"`
	Platform1Name        string     `json:"platform_1_name"`
	Platform1ReviewCount int        `json:"platform_1_review_count"`
	Platform1URL         string     `json:"platform_1_url"`
	Platform2Name        string     `json:"platform_2_name"`
	Platform2ReviewCount int        `json:"platform_2_review_count"`
	Platform2URL         string     `json:"platform_2_url"`
}

// RecordFields mirrors the column names of the Public Records table.
// The profile column holds linked record IDs, not display values.
type RecordFields struct {
	RecordID                   string   `json:"record_id"`
	Profile                    []string `json:"profile"`
	CustomerLabel              string   `json:"customer_label"`
	ExperienceDate             string   `json:"experience_date"`
	ExperienceMonth            string   `json:"experience_month"`
	OverallScore               float64  `json:"overall_score"`
	Recommended                FlexBool `json:"recommended"`
	RecordSummaryPublic        string   `json:"record_summary_public"`
	PublishStatus              string   `json:"publish_status"`
	Flag8Plus                  FlexBool `json:"flag_8_plus"`
	FlagRecommended            FlexBool `json:"flag_recommended"`
	CompanyActionNote          string   `json:"company_action_note"`
	CompanyActionNoteStatus    string   `json:"company_action_note_status"`
	CompanyActionNoteApproved  FlexBool `json:"company_action_note_approved"`
	CompanyActionNoteOverLimit FlexBool `json:"company_action_note_over_limit"`
}

// DimensionScoreFields mirrors the Record Dimension Scores table.
// RDSID is "{recordId}::{dimensionName}"; the dimension name is only
// recoverable from there because the dimension column links record IDs.
type DimensionScoreFields struct {
	RDSID   string   `json:"rds_id"`
	Record  []string `json:"record"`
	Score   *float64 `json:"score"`
	Profile []string `json:"profile"`
}

// DimensionName extracts the dimension name from the rds_id column.
func (f DimensionScoreFields) DimensionName() string {
	if _, name, ok := strings.Cut(f.RDSID, "::"); ok {
		return name
	}
	return ""
}
