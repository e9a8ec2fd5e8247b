package domain

import (
	_ "embed"
	"encoding/json"
	"strings"
)

// Video is a single speaker video. Rows may carry either bare URLs or
// structured objects; bare URLs produce a Video with only URL set and the
// enricher fills in the rest where it can.
type Video struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title,omitempty"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Source    string `json:"source,omitempty"`
	Duration  string `json:"duration,omitempty"`
}

type Testimonial struct {
	Quote    string `json:"quote"`
	Author   string `json:"author"`
	Position string `json:"position,omitempty"`
	Company  string `json:"company,omitempty"`
	Event    string `json:"event,omitempty"`
}

// Speaker is the canonical directory record. Multi-value fields are always
// non-nil slices so consumers never need nil checks.
type Speaker struct {
	Slug          string        `json:"slug"`
	Name          string        `json:"name"`
	Title         string        `json:"title"`
	Bio           string        `json:"bio"`
	Image         string        `json:"image"`
	ImagePosition string        `json:"imagePosition,omitempty"`
	ImageOffsetY  string        `json:"imageOffsetY,omitempty"`
	Programs      []string      `json:"programs"`
	Industries    []string      `json:"industries"`
	Tags          []string      `json:"tags"`
	Languages     []string      `json:"languages"`
	Topics        []string      `json:"topics"`
	Expertise     []string      `json:"expertise"`
	Fee           string        `json:"fee"`
	FeeRange      string        `json:"feeRange,omitempty"`
	Location      string        `json:"location"`
	LinkedIn      string        `json:"linkedin,omitempty"`
	Twitter       string        `json:"twitter,omitempty"`
	Website       string        `json:"website,omitempty"`
	Featured      bool          `json:"featured"`
	Listed        bool          `json:"listed"`
	IsVirtual     bool          `json:"isVirtual"`
	Videos        []Video       `json:"videos"`
	Testimonials  []Testimonial `json:"testimonials"`
	Ranking       int           `json:"ranking"`
	LastUpdated   string        `json:"lastUpdated"`
}

//go:embed data/fallback_speakers.json
var fallbackJSON []byte

type fallbackData struct {
	Version  string     `json:"version"`
	Speakers []*Speaker `json:"speakers"`
}

// LoadFallbackSpeakers returns the embedded static speaker set used when the
// external source is unreachable or unconfigured.
func LoadFallbackSpeakers() ([]*Speaker, error) {
	var data fallbackData
	if err := json.Unmarshal(fallbackJSON, &data); err != nil {
		return nil, err
	}
	return data.Speakers, nil
}

// MatchesQuery reports whether the speaker matches a case-insensitive
// substring query across name, title, bio, industries, programs and tags.
func (s *Speaker) MatchesQuery(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}

	if strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.Title), q) ||
		strings.Contains(strings.ToLower(s.Bio), q) {
		return true
	}

	for _, group := range [][]string{s.Industries, s.Programs, s.Tags} {
		for _, entry := range group {
			if strings.Contains(strings.ToLower(entry), q) {
				return true
			}
		}
	}
	return false
}

// HasIndustry reports whether any industry entry contains the given
// substring, case-insensitively. An empty needle never matches; the
// directory treats empty industry filters as an explicit non-match.
func (s *Speaker) HasIndustry(industry string) bool {
	needle := strings.ToLower(industry)
	if needle == "" {
		return false
	}
	for _, entry := range s.Industries {
		if strings.Contains(strings.ToLower(entry), needle) {
			return true
		}
	}
	return false
}
