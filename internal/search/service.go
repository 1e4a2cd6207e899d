// Package search ranks the non-draft profile catalog for agent-facing
// discovery. Scoring is additive over tag, keyword and category matches;
// profiles with no relevance at all are excluded rather than ranked low.
package search

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"sei-core/internal/airtable"
	"sei-core/internal/common/logger"
	"sei-core/internal/models"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50

	scoreFullPhraseTag = 3
	scoreKeywordTag    = 2
	scoreCategory      = 1
)

// Source is the slice of the store this service reads.
type Source interface {
	AgentProfiles(ctx context.Context) ([]airtable.Record[airtable.ProfileFields], error)
}

type Service struct {
	source Source
	logger logger.Logger
}

func NewService(source Source, log logger.Logger) *Service {
	return &Service{source: source, logger: log}
}

// Search scores every non-draft profile against the query, drops zero-score
// profiles and returns at most limit results ordered by relevance.
func (s *Service) Search(ctx context.Context, query, location string, limit int) ([]models.SearchResult, error) {
	limit = ClampLimit(limit)

	rows, err := s.source.AgentProfiles(ctx)
	if err != nil {
		return nil, err
	}

	results := []models.SearchResult{}
	for _, row := range rows {
		profile := toAgentProfile(row)
		if result, ok := scoreProfile(profile, query, location); ok {
			results = append(results, result)
		}
	}

	collator := collate.New(language.BritishEnglish, collate.IgnoreCase)
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		if a.LocationMatch != b.LocationMatch {
			return a.LocationMatch
		}
		return collator.CompareString(a.Name, b.Name) < 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ClampLimit maps a caller-supplied limit into [1, 50], defaulting to 10
// when unset.
func ClampLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultLimit
	case limit < 1:
		return 1
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// scoreProfile computes the additive relevance of one profile. The second
// return value is false when the profile has no relevance to the query.
func scoreProfile(profile models.AgentProfile, query, location string) (models.SearchResult, bool) {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	keywords := strings.Fields(queryLower)

	score := 0
	matchType := models.MatchPartial

	tagsLower := lowerAll(profile.Tags)
	for _, tag := range tagsLower {
		if strings.Contains(tag, queryLower) || strings.Contains(queryLower, tag) {
			score += scoreFullPhraseTag
			matchType = models.MatchDirect
			break
		}
	}

	for _, kw := range keywords {
		for _, tag := range tagsLower {
			if strings.Contains(tag, kw) {
				score += scoreKeywordTag
				break
			}
		}
	}

	categoryLower := strings.ToLower(profile.Category)
	categoryMatch := strings.Contains(categoryLower, queryLower)
	for _, kw := range keywords {
		if categoryMatch {
			break
		}
		categoryMatch = strings.Contains(categoryLower, kw)
	}
	if categoryMatch {
		score += scoreCategory
		if matchType == models.MatchPartial {
			matchType = models.MatchCategory
		}
	}

	if score == 0 {
		return models.SearchResult{}, false
	}

	// Only covered areas count as a location match. A base-location match
	// keeps the profile in the results but leaves location_match false.
	locationMatch := false
	if location != "" {
		locLower := strings.ToLower(location)
		for _, area := range lowerAll(profile.AreasCovered) {
			if strings.Contains(area, locLower) || strings.Contains(locLower, area) {
				locationMatch = true
				break
			}
		}
	}

	return models.SearchResult{
		CompanyID:      profile.ProfileID,
		Name:           profile.Name,
		Slug:           profile.Slug,
		MatchType:      matchType,
		LocationMatch:  locationMatch,
		RelevanceScore: score,
		ProfileURL:     "/profiles/" + profile.Slug,
	}, true
}

func toAgentProfile(row airtable.Record[airtable.ProfileFields]) models.AgentProfile {
	f := row.Fields
	return models.AgentProfile{
		ProfileID:    f.ProfileID,
		Name:         f.Name,
		Slug:         f.Slug,
		Category:     f.Category,
		Tags:         f.Tags,
		BasedIn:      f.BasedIn,
		AreasCovered: f.AreasCovered,
	}
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
