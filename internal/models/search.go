// internal/models/search.go
package models

// MatchType classifies how a search result matched the query.
type MatchType string

const (
	MatchDirect   MatchType = "direct"
	MatchCategory MatchType = "category"
	MatchPartial  MatchType = "partial"
)

// AgentProfile is the reduced profile view the search layer ranks over:
// every non-draft profile with its tags and coverage areas.
type AgentProfile struct {
	ProfileID    string   `json:"profileId"`
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	BasedIn      string   `json:"basedIn"`
	AreasCovered []string `json:"areasCovered"`
}

// SearchResult is one ranked entry of the agent search response.
type SearchResult struct {
	CompanyID      string    `json:"company_id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	MatchType      MatchType `json:"match_type"`
	LocationMatch  bool      `json:"location_match"`
	RelevanceScore int       `json:"relevance_score"`
	ProfileURL     string    `json:"profile_url"`
}
