package directory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/podiumreach/speaker-directory-go/internal/constants"
	"github.com/podiumreach/speaker-directory-go/internal/domain"
	"github.com/podiumreach/speaker-directory-go/internal/util"
)

// RowSource fetches raw tabular rows, header row first. A nil RowSource
// means the directory runs on its fallback set alone.
type RowSource interface {
	FetchRows(ctx context.Context) ([][]string, error)
}

// SnapshotStore persists the last good collection so a source outage can be
// bridged with recent data instead of the static fallback set.
type SnapshotStore interface {
	GetDirectorySnapshot(ctx context.Context) ([]*domain.Speaker, bool)
	SetDirectorySnapshot(ctx context.Context, speakers []*domain.Speaker)
}

// Enricher fills in derived video metadata after normalization. It must
// never fail; records pass through untouched on any enrichment problem.
type Enricher interface {
	EnrichSpeakers(ctx context.Context, speakers []*domain.Speaker)
}

// Collection sources, reported in refresh events and logs.
const (
	SourceSheets   = "sheets"
	SourceSnapshot = "snapshot"
	SourceFallback = "fallback"
)

type RefreshEvent struct {
	Source string    `json:"source"`
	Count  int       `json:"count"`
	At     time.Time `json:"at"`
}

type Config struct {
	TTL           time.Duration
	FeaturedLimit int
}

// Service owns the cached speaker collection. All read operations are
// failure-absorbing: external problems degrade the data, they never reach
// callers as errors.
type Service struct {
	source        RowSource
	snapshots     SnapshotStore
	enricher      Enricher
	fallback      []*domain.Speaker
	ttl           time.Duration
	featuredLimit int
	logger        *zap.Logger

	// records is replaced whole on refresh, never mutated in place.
	mu          sync.RWMutex
	records     []*domain.Speaker
	lastRefresh time.Time

	// refreshMu serializes refreshes; concurrent stale readers coalesce on
	// one fetch instead of fanning out.
	refreshMu sync.Mutex

	subsMu  sync.Mutex
	subs    map[int]chan RefreshEvent
	nextSub int
}

func NewService(source RowSource, snapshots SnapshotStore, enricher Enricher, fallback []*domain.Speaker, cfg Config, logger *zap.Logger) *Service {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = constants.CacheTTL.Directory
	}
	featuredLimit := cfg.FeaturedLimit
	if featuredLimit <= 0 {
		featuredLimit = constants.DirectoryConfig.DefaultFeaturedLimit
	}

	return &Service{
		source:        source,
		snapshots:     snapshots,
		enricher:      enricher,
		fallback:      fallback,
		ttl:           ttl,
		featuredLimit: featuredLimit,
		logger:        logger,
		subs:          make(map[int]chan RefreshEvent),
	}
}

// GetAllSpeakers returns the full collection, ranking-descending. The
// returned slice is the caller's to reorder; the records are shared.
func (s *Service) GetAllSpeakers(ctx context.Context) []*domain.Speaker {
	s.ensureFresh(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Speaker, len(s.records))
	copy(out, s.records)
	return out
}

// GetFeaturedSpeakers returns up to limit featured speakers in ranking
// order. A non-positive limit falls back to the configured default.
func (s *Service) GetFeaturedSpeakers(ctx context.Context, limit int) []*domain.Speaker {
	if limit <= 0 {
		limit = s.featuredLimit
	}

	featured := make([]*domain.Speaker, 0, limit)
	for _, sp := range s.GetAllSpeakers(ctx) {
		if !sp.Featured {
			continue
		}
		featured = append(featured, sp)
		if len(featured) == limit {
			break
		}
	}
	return featured
}

// GetSpeakerBySlug looks up a single speaker by exact slug. No fuzzy
// fallback.
func (s *Service) GetSpeakerBySlug(ctx context.Context, slug string) (*domain.Speaker, bool) {
	for _, sp := range s.GetAllSpeakers(ctx) {
		if sp.Slug == slug {
			return sp, true
		}
	}
	return nil, false
}

// SearchSpeakers filters the collection by case-insensitive substring match
// across name, title, bio, industries, programs and tags. An empty query
// returns the full collection.
func (s *Service) SearchSpeakers(ctx context.Context, query string) []*domain.Speaker {
	if strings.TrimSpace(query) == "" {
		return s.GetAllSpeakers(ctx)
	}

	matched := make([]*domain.Speaker, 0)
	for _, sp := range s.GetAllSpeakers(ctx) {
		if sp.MatchesQuery(query) {
			matched = append(matched, sp)
		}
	}
	return matched
}

// GetUniqueIndustries returns the alphabetically sorted set of industries
// across the collection.
func (s *Service) GetUniqueIndustries(ctx context.Context) []string {
	industries := make([]string, 0)
	for _, sp := range s.GetAllSpeakers(ctx) {
		for _, industry := range sp.Industries {
			if industry != "" {
				industries = append(industries, industry)
			}
		}
	}

	industries = util.UniqueStrings(industries)
	sort.Strings(industries)
	return industries
}

// GetSpeakersByIndustry returns listed speakers whose industries contain
// the given substring, case-insensitively. An empty industry returns an
// empty result, not the full set; callers wanting everything use
// GetAllSpeakers.
func (s *Service) GetSpeakersByIndustry(ctx context.Context, industry string) []*domain.Speaker {
	matched := make([]*domain.Speaker, 0)
	if industry == "" {
		return matched
	}

	for _, sp := range s.GetAllSpeakers(ctx) {
		if sp.Listed && sp.HasIndustry(industry) {
			matched = append(matched, sp)
		}
	}
	return matched
}

// Stats reports the current collection size and refresh time without
// triggering a refresh.
func (s *Service) Stats() (count int, lastRefresh time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), s.lastRefresh
}

// Subscribe registers for refresh events. The returned cancel func must be
// called to release the subscription. Slow consumers miss events rather
// than blocking a refresh.
func (s *Service) Subscribe() (<-chan RefreshEvent, func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan RefreshEvent, 4)
	s.subs[id] = ch

	cancel := func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (s *Service) publish(event RefreshEvent) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (s *Service) isFreshLocked() bool {
	return s.records != nil && time.Since(s.lastRefresh) < s.ttl
}

func (s *Service) ensureFresh(ctx context.Context) {
	s.mu.RLock()
	fresh := s.isFreshLocked()
	s.mu.RUnlock()
	if fresh {
		return
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// Re-check: a concurrent caller may have refreshed while we waited.
	s.mu.RLock()
	fresh = s.isFreshLocked()
	s.mu.RUnlock()
	if fresh {
		return
	}

	s.refresh(ctx)
}

// refresh rebuilds the collection and swaps it in atomically. The refresh
// timestamp is recorded for degraded collections too, so a dead source is
// retried at most once per TTL window.
func (s *Service) refresh(ctx context.Context) {
	fetchedAt := time.Now()

	speakers, source := s.loadSpeakers(ctx, fetchedAt)
	speakers = finalizeCollection(speakers)

	if s.enricher != nil && source == SourceSheets {
		s.enricher.EnrichSpeakers(ctx, speakers)
	}

	s.mu.Lock()
	s.records = speakers
	s.lastRefresh = fetchedAt
	s.mu.Unlock()

	if source == SourceSheets && s.snapshots != nil {
		s.snapshots.SetDirectorySnapshot(ctx, speakers)
	}

	s.logger.Info("Directory refreshed",
		zap.String("source", source),
		zap.Int("speakers", len(speakers)),
	)

	s.publish(RefreshEvent{Source: source, Count: len(speakers), At: fetchedAt})
}

func (s *Service) loadSpeakers(ctx context.Context, fetchedAt time.Time) ([]*domain.Speaker, string) {
	if s.source == nil {
		s.logger.Warn("No external source configured, serving degraded directory")
		return s.degraded(ctx)
	}

	rows, err := s.source.FetchRows(ctx)
	if err != nil {
		s.logger.Error("External source fetch failed, serving degraded directory", zap.Error(err))
		return s.degraded(ctx)
	}
	if len(rows) < 2 {
		s.logger.Warn("External source returned no data rows, serving degraded directory",
			zap.Int("rows", len(rows)),
		)
		return s.degraded(ctx)
	}

	return normalizeRows(rows, fetchedAt, s.logger), SourceSheets
}

// degraded walks the degradation chain: recent snapshot first, then the
// embedded fallback set.
func (s *Service) degraded(ctx context.Context) ([]*domain.Speaker, string) {
	if s.snapshots != nil {
		if snap, ok := s.snapshots.GetDirectorySnapshot(ctx); ok && len(snap) > 0 {
			return snap, SourceSnapshot
		}
	}
	return s.fallback, SourceFallback
}

// finalizeCollection deduplicates by slug (first occurrence wins), enforces
// the non-nil-slice invariant and sorts ranking-descending with stable ties.
func finalizeCollection(speakers []*domain.Speaker) []*domain.Speaker {
	seen := make(map[string]struct{}, len(speakers))
	result := make([]*domain.Speaker, 0, len(speakers))

	for _, sp := range speakers {
		if sp == nil {
			continue
		}
		if _, dup := seen[sp.Slug]; dup {
			continue
		}
		seen[sp.Slug] = struct{}{}
		ensureSliceDefaults(sp)
		result = append(result, sp)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Ranking > result[j].Ranking
	})
	return result
}

func ensureSliceDefaults(sp *domain.Speaker) {
	if sp.Programs == nil {
		sp.Programs = make([]string, 0)
	}
	if sp.Industries == nil {
		sp.Industries = make([]string, 0)
	}
	if sp.Tags == nil {
		sp.Tags = make([]string, 0)
	}
	if sp.Languages == nil {
		sp.Languages = make([]string, 0)
	}
	if sp.Topics == nil {
		sp.Topics = make([]string, 0)
	}
	if sp.Expertise == nil {
		sp.Expertise = make([]string, 0)
	}
	if sp.Videos == nil {
		sp.Videos = make([]domain.Video, 0)
	}
	if sp.Testimonials == nil {
		sp.Testimonials = make([]domain.Testimonial, 0)
	}
}
