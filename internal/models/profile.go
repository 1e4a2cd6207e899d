// internal/models/profile.go
package models

// DimensionScores holds the four named dimension averages of a profile or
// the four dimension ratings of a single record.
type DimensionScores struct {
	ProductSatisfaction      float64 `json:"productSatisfaction"`
	InstallationSatisfaction float64 `json:"installationSatisfaction"`
	ProcessCommunication     float64 `json:"processCommunication"`
	LikelihoodToRecommend    float64 `json:"likelihoodToRecommend"`
}

type ConsistencySignals struct {
	HighScorePercentage float64  `json:"highScorePercentage"`
	RecommendationRate  float64  `json:"recommendationRate"`
	TopThemes           []string `json:"topThemes"`
}

type Quote struct {
	Quote string `json:"quote"`
	Name  string `json:"name"`
}

type ExternalPresence struct {
	Platform1Name        string `json:"platform1Name,omitempty"`
	Platform1ReviewCount int    `json:"platform1ReviewCount,omitempty"`
	Platform1URL         string `json:"platform1Url,omitempty"`
	Platform2Name        string `json:"platform2Name,omitempty"`
	Platform2ReviewCount int    `json:"platform2ReviewCount,omitempty"`
	Platform2URL         string `json:"platform2Url,omitempty"`
}

// Profile is the full detail view of a published business. OverallScore and
// SampleSize are recomputed from linked records on every detail fetch; the
// stored columns are treated as cache only.
type Profile struct {
	ProfileID          string             `json:"profileId"`
	Slug               string             `json:"slug"`
	BusinessName       string             `json:"businessName"`
	Location           string             `json:"location"`
	Category           string             `json:"category"`
	Tags               []string           `json:"tags"`
	OverallScore       float64            `json:"overallScore"`
	SampleSize         int                `json:"sampleSize"`
	DateRange          string             `json:"dateRange"`
	Summary            string             `json:"summary"`
	Scores             DimensionScores    `json:"scores"`
	ConsistencySignals ConsistencySignals `json:"consistencySignals"`
	CustomerVoice      []Quote            `json:"customerVoice"`
	LogoURL            string             `json:"logoUrl,omitempty"`
	Website            string             `json:"website,omitempty"`
	ShortDescription   string             `json:"shortDescription,omitempty"`
	Services           []string           `json:"services,omitempty"`
	BaseLocation       string             `json:"baseLocation,omitempty"`
	AreasCovered       []string           `json:"areasCovered,omitempty"`
	ExternalPresence   *ExternalPresence  `json:"externalPresence,omitempty"`
}

// ProfileSummary is the listing view of a profile.
type ProfileSummary struct {
	ProfileID        string   `json:"profileId"`
	Slug             string   `json:"slug"`
	BusinessName     string   `json:"businessName"`
	Location         string   `json:"location"`
	Category         string   `json:"category"`
	Tags             []string `json:"tags"`
	OverallScore     float64  `json:"overallScore"`
	SampleSize       int      `json:"sampleSize"`
	DateRange        string   `json:"dateRange"`
	LogoURL          string   `json:"logoUrl,omitempty"`
	ShortDescription string   `json:"shortDescription"`
	Website          string   `json:"website,omitempty"`
}
