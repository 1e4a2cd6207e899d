// internal/models/record.go
package models

// Sentiment buckets derived from a record's overall score.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentMixed    Sentiment = "mixed"
	SentimentNegative Sentiment = "negative"
)

// SentimentForScore derives the sentiment bucket: positive at 8 and above,
// mixed at 5 and above, negative below.
func SentimentForScore(score float64) Sentiment {
	switch {
	case score >= 8:
		return SentimentPositive
	case score >= 5:
		return SentimentMixed
	default:
		return SentimentNegative
	}
}

// ExperienceRecord is one customer's published evaluation of a profile.
type ExperienceRecord struct {
	CustomerLabel             string          `json:"customerLabel"`
	Date                      string          `json:"date"`
	Headline                  string          `json:"headline"`
	OverallScore              float64         `json:"overallScore"`
	SummaryPublic             string          `json:"summaryPublic"`
	Sentiment                 Sentiment       `json:"sentiment"`
	Tags                      []string        `json:"tags"`
	Ratings                   DimensionScores `json:"ratings"`
	BehaviouralNote           string          `json:"behaviouralNote,omitempty"`
	CompanyActionNote         string          `json:"companyActionNote,omitempty"`
	CompanyActionNoteApproved bool            `json:"companyActionNoteApproved"`
}
