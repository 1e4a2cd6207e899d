// Package profiles aggregates raw store rows into the published profile
// views: listing summaries, recomputed detail pages and per-profile
// experience records.
package profiles

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"sei-core/internal/airtable"
	"sei-core/internal/common/logger"
	"sei-core/internal/models"
)

const (
	cacheKeySummaries = "profiles:summaries"
	cacheKeyDetail    = "profiles:detail:%s"
	cacheKeyRecords   = "profiles:records:%s"
)

// Source is the slice of the store this service reads.
type Source interface {
	Profiles(ctx context.Context) ([]airtable.Record[airtable.ProfileFields], error)
	ProfileBySlug(ctx context.Context, slug string) (*airtable.Record[airtable.ProfileFields], error)
	Records(ctx context.Context) ([]airtable.Record[airtable.RecordFields], error)
	DimensionScores(ctx context.Context) ([]airtable.Record[airtable.DimensionScoreFields], error)
}

// FilterParams narrows the profile listing. Nil numeric bounds mean no bound.
type FilterParams struct {
	Location  string
	Category  string
	MinScore  *float64
	MinSample *int
}

type Service struct {
	source Source
	cache  *gocache.Cache
	logger logger.Logger
}

func NewService(source Source, cacheTTL time.Duration, log logger.Logger) *Service {
	return &Service{
		source: source,
		cache:  gocache.New(cacheTTL, 2*cacheTTL),
		logger: log,
	}
}

// Summaries lists every profile sorted by business name, case-insensitive
// and locale-aware.
func (s *Service) Summaries(ctx context.Context) ([]models.ProfileSummary, error) {
	if cached, ok := s.cache.Get(cacheKeySummaries); ok {
		return cached.([]models.ProfileSummary), nil
	}

	records, err := s.source.Profiles(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ProfileSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, toProfileSummary(rec))
	}

	collator := collate.New(language.BritishEnglish, collate.IgnoreCase)
	sort.SliceStable(summaries, func(i, j int) bool {
		return collator.CompareString(summaries[i].BusinessName, summaries[j].BusinessName) < 0
	})

	s.cache.SetDefault(cacheKeySummaries, summaries)
	return summaries, nil
}

// Detail returns the full profile for slug, or nil when no profile matches.
// The overall score, sample size, dimension averages and consistency signals
// are recomputed from the records currently linked to the profile; the
// stored aggregate columns are ignored.
func (s *Service) Detail(ctx context.Context, slug string) (*models.Profile, error) {
	key := fmt.Sprintf(cacheKeyDetail, slug)
	if cached, ok := s.cache.Get(key); ok {
		profile := cached.(models.Profile)
		return &profile, nil
	}

	row, err := s.source.ProfileBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	scores, records, err := s.fetchLinked(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	totals := map[string]dimensionTotal{}
	for _, ds := range scores {
		dim := ds.Fields.DimensionName()
		if dim == "" || ds.Fields.Score == nil {
			continue
		}
		t := totals[dim]
		t.sum += *ds.Fields.Score
		t.count++
		totals[dim] = t
	}
	avg := func(dim string) float64 {
		t := totals[dim]
		if t.count == 0 {
			return 0
		}
		return t.sum / float64(t.count)
	}

	total := len(records)
	var highCount, recommendedCount int
	var scoreSum float64
	for _, rec := range records {
		scoreSum += rec.Fields.OverallScore
		if rec.Fields.OverallScore >= 8 {
			highCount++
		}
		if rec.Fields.Recommended.Bool() {
			recommendedCount++
		}
	}

	profile := toProfile(*row)
	profile.SampleSize = total
	profile.OverallScore = 0
	if total > 0 {
		profile.OverallScore = roundHalfUp1(scoreSum / float64(total))
	}
	profile.Scores = models.DimensionScores{
		ProductSatisfaction:      avg(dimProduct),
		InstallationSatisfaction: avg(dimInstallation),
		ProcessCommunication:     avg(dimProcess),
		LikelihoodToRecommend:    avg(dimRecommend),
	}
	profile.ConsistencySignals.HighScorePercentage = 0
	profile.ConsistencySignals.RecommendationRate = 0
	if total > 0 {
		profile.ConsistencySignals.HighScorePercentage = roundHalfUp(100 * float64(highCount) / float64(total))
		profile.ConsistencySignals.RecommendationRate = roundHalfUp(100 * float64(recommendedCount) / float64(total))
	}

	s.cache.SetDefault(key, profile)
	return &profile, nil
}

// RecordsForProfile returns the experience records linked to the profile
// with the given slug, newest first. Empty dates sort last.
func (s *Service) RecordsForProfile(ctx context.Context, slug string) ([]models.ExperienceRecord, error) {
	key := fmt.Sprintf(cacheKeyRecords, slug)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]models.ExperienceRecord), nil
	}

	row, err := s.source.ProfileBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return []models.ExperienceRecord{}, nil
	}

	scores, records, err := s.fetchLinked(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	// record ID -> dimension name -> score
	scoreMap := map[string]map[string]float64{}
	for _, ds := range scores {
		if len(ds.Fields.Record) == 0 || ds.Fields.Score == nil {
			continue
		}
		dim := ds.Fields.DimensionName()
		if dim == "" {
			continue
		}
		recordID := ds.Fields.Record[0]
		if scoreMap[recordID] == nil {
			scoreMap[recordID] = map[string]float64{}
		}
		scoreMap[recordID][dim] = *ds.Fields.Score
	}

	out := make([]models.ExperienceRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, toExperienceRecord(rec, scoreMap[rec.ID]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})

	s.cache.SetDefault(key, out)
	return out, nil
}

// Categories returns the distinct profile categories, sorted.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	summaries, err := s.Summaries(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	categories := []string{}
	for _, p := range summaries {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// Slugs returns every profile slug in listing order.
func (s *Service) Slugs(ctx context.Context) ([]string, error) {
	summaries, err := s.Summaries(ctx)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(summaries))
	for _, p := range summaries {
		slugs = append(slugs, p.Slug)
	}
	return slugs, nil
}

// Filter narrows the listing by location/category substring and score or
// sample-size floors.
func (s *Service) Filter(ctx context.Context, params FilterParams) ([]models.ProfileSummary, error) {
	summaries, err := s.Summaries(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.ProfileSummary, 0, len(summaries))
	for _, p := range summaries {
		if params.Location != "" && !containsFold(p.Location, params.Location) {
			continue
		}
		if params.Category != "" && !containsFold(p.Category, params.Category) {
			continue
		}
		if params.MinScore != nil && p.OverallScore < *params.MinScore {
			continue
		}
		if params.MinSample != nil && p.SampleSize < *params.MinSample {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Invalidate drops every cached view. The slug is informational: updates to
// one profile invalidate the listing and category views as well, so partial
// invalidation would serve stale aggregates.
func (s *Service) Invalidate(slug string) {
	s.cache.Flush()
	target := slug
	if target == "" {
		target = "all"
	}
	s.logger.Info("profile cache invalidated", map[string]interface{}{
		"slug": target,
	})
}

// fetchLinked loads all dimension-score and record rows in parallel, then
// filters to those whose linked-profile column includes profileRecordID. The
// store cannot filter linked columns by record ID server-side.
func (s *Service) fetchLinked(ctx context.Context, profileRecordID string) ([]airtable.Record[airtable.DimensionScoreFields], []airtable.Record[airtable.RecordFields], error) {
	var (
		allScores  []airtable.Record[airtable.DimensionScoreFields]
		allRecords []airtable.Record[airtable.RecordFields]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		allScores, err = s.source.DimensionScores(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		allRecords, err = s.source.Records(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	scores := allScores[:0:0]
	for _, ds := range allScores {
		if containsString(ds.Fields.Profile, profileRecordID) {
			scores = append(scores, ds)
		}
	}
	records := allRecords[:0:0]
	for _, rec := range allRecords {
		if containsString(rec.Fields.Profile, profileRecordID) {
			records = append(records, rec)
		}
	}
	return scores, records, nil
}

type dimensionTotal struct {
	sum   float64
	count int
}

func containsString(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
