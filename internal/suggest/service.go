package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/podiumreach/speaker-directory-go/internal/constants"
	"github.com/podiumreach/speaker-directory-go/internal/domain"
	"github.com/podiumreach/speaker-directory-go/internal/util"
)

// DirectoryReader is the slice of the directory the suggester needs.
type DirectoryReader interface {
	SearchSpeakers(ctx context.Context, query string) []*domain.Speaker
	GetSpeakersByIndustry(ctx context.Context, industry string) []*domain.Speaker
	GetUniqueIndustries(ctx context.Context) []string
}

// SearchIntent is the structured reading of a free-form booking request.
type SearchIntent struct {
	Keywords   []string `json:"keywords"`
	Industries []string `json:"industries"`
}

type Result struct {
	Query    string            `json:"query"`
	Intent   *SearchIntent     `json:"intent,omitempty"`
	Speakers []*domain.Speaker `json:"speakers"`
	Source   string            `json:"source"`
}

// Suggestion sources.
const (
	SourceAI    = "ai"
	SourceBasic = "basic"
)

// Service turns free-form queries into speaker suggestions. AI providers
// extract a structured intent; when none succeed, or the circuit is open,
// the query degrades to a plain substring search. Suggest never fails.
type Service struct {
	providers []JSONProvider
	directory DirectoryReader
	breaker   *util.CircuitBreaker
	logger    *zap.Logger
}

func NewService(providers []JSONProvider, directory DirectoryReader, logger *zap.Logger) *Service {
	return &Service{
		providers: providers,
		directory: directory,
		breaker: util.NewCircuitBreaker(
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			logger,
		),
		logger: logger,
	}
}

func (s *Service) Suggest(ctx context.Context, query string) Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{Query: query, Speakers: make([]*domain.Speaker, 0), Source: SourceBasic}
	}

	if intent := s.extractIntent(ctx, query); intent != nil {
		speakers := s.matchIntent(ctx, intent)
		if len(speakers) > 0 {
			return Result{Query: query, Intent: intent, Speakers: speakers, Source: SourceAI}
		}
		s.logger.Debug("AI intent matched no speakers, falling back to plain search",
			zap.String("query", util.TruncateString(query, 80)),
		)
	}

	return Result{
		Query:    query,
		Speakers: s.directory.SearchSpeakers(ctx, query),
		Source:   SourceBasic,
	}
}

func (s *Service) extractIntent(ctx context.Context, query string) *SearchIntent {
	if len(s.providers) == 0 {
		return nil
	}
	if !s.breaker.CanExecute() {
		s.logger.Debug("Intent extraction skipped, circuit open")
		return nil
	}

	prompt := s.buildPrompt(ctx, query)

	for _, provider := range s.providers {
		text, err := provider.GenerateJSON(ctx, prompt)
		if err != nil {
			s.logger.Warn("Intent provider failed",
				zap.String("provider", provider.Name()),
				zap.Error(err),
			)
			continue
		}

		intent, err := parseIntent(text)
		if err != nil {
			s.logger.Warn("Intent response unparseable",
				zap.String("provider", provider.Name()),
				zap.Error(err),
			)
			continue
		}

		s.breaker.RecordSuccess()
		s.logger.Debug("Search intent extracted",
			zap.String("provider", provider.Name()),
			zap.Strings("keywords", intent.Keywords),
			zap.Strings("industries", intent.Industries),
		)
		return intent
	}

	s.breaker.RecordFailure()
	return nil
}

func (s *Service) buildPrompt(ctx context.Context, query string) string {
	industries := s.directory.GetUniqueIndustries(ctx)
	return fmt.Sprintf(`Extract search intent from a request for a speaker-booking agency.

Request: %q

Known industries: %s

Respond with a JSON object of this exact shape:
{"keywords": ["..."], "industries": ["..."]}

Rules:
- keywords: up to 5 short search terms drawn from the request (topics, names, formats).
- industries: only values from the known industries list that clearly apply.
- Use empty arrays when nothing applies.`,
		query, strings.Join(industries, ", "))
}

func parseIntent(text string) (*SearchIntent, error) {
	text = stripCodeFence(text)

	var intent SearchIntent
	if err := json.Unmarshal([]byte(text), &intent); err != nil {
		return nil, fmt.Errorf("malformed intent JSON: %w", err)
	}
	if len(intent.Keywords) == 0 && len(intent.Industries) == 0 {
		return nil, fmt.Errorf("intent extracted nothing")
	}
	return &intent, nil
}

// stripCodeFence removes a surrounding markdown code fence, which some models
// wrap around JSON despite instructions.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// matchIntent unions the matches for every keyword and industry, deduped by
// slug, ranking-descending.
func (s *Service) matchIntent(ctx context.Context, intent *SearchIntent) []*domain.Speaker {
	seen := make(map[string]struct{})
	matched := make([]*domain.Speaker, 0)

	add := func(speakers []*domain.Speaker) {
		for _, sp := range speakers {
			if _, dup := seen[sp.Slug]; dup {
				continue
			}
			seen[sp.Slug] = struct{}{}
			matched = append(matched, sp)
		}
	}

	for _, industry := range intent.Industries {
		add(s.directory.GetSpeakersByIndustry(ctx, industry))
	}
	for _, keyword := range intent.Keywords {
		if strings.TrimSpace(keyword) == "" {
			continue
		}
		add(s.directory.SearchSpeakers(ctx, keyword))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Ranking > matched[j].Ranking
	})
	return matched
}
