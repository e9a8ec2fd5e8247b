package directory

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/podiumreach/speaker-directory-go/internal/domain"
	"github.com/podiumreach/speaker-directory-go/internal/util"
	dirErrors "github.com/podiumreach/speaker-directory-go/pkg/errors"
)

const (
	defaultFee       = "Inquire for Fee"
	defaultLocation  = "N/A"
	placeholderImage = "/images/speakers/placeholder.jpg"
)

// rowRecord is the typed view over one raw spreadsheet row. Columns are
// addressed by canonical header key; missing or short rows read as empty.
type rowRecord struct {
	columns map[string]int
	cells   []string
}

func (r rowRecord) raw(key string) string {
	idx, ok := r.columns[key]
	if !ok || idx >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[idx])
}

func (r rowRecord) str(key, def string) string {
	if v := r.raw(key); v != "" {
		return v
	}
	return def
}

func (r rowRecord) csv(key string) []string {
	return util.SplitCSV(r.raw(key))
}

// boolean matches only the literal lowercase "true"; "True", "1" and empty
// all read as false.
func (r rowRecord) boolean(key string) bool {
	return r.raw(key) == "true"
}

// booleanDefaultTrue is for opt-out flags: empty reads as true, anything
// else follows the literal-"true" rule.
func (r rowRecord) booleanDefaultTrue(key string) bool {
	v := r.raw(key)
	if v == "" {
		return true
	}
	return v == "true"
}

func (r rowRecord) integer(key string, def int) int {
	v := r.raw(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return def
}

// canonicalColumns maps the header row to cell indexes. Columns may appear
// in any order; on duplicate headers the first wins.
func canonicalColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := util.CanonicalHeader(h)
		if key == "" {
			continue
		}
		if _, exists := cols[key]; !exists {
			cols[key] = i
		}
	}
	return cols
}

// normalizeRows maps raw tabular rows (header row first) into Speaker
// records. A row that fails to parse is dropped whole and logged with its
// row number; the rest of the collection survives.
func normalizeRows(rows [][]string, fetchedAt time.Time, logger *zap.Logger) []*domain.Speaker {
	if len(rows) < 2 {
		return nil
	}

	cols := canonicalColumns(rows[0])
	speakers := make([]*domain.Speaker, 0, len(rows)-1)

	for i, cells := range rows[1:] {
		rowIndex := i + 1
		rec := rowRecord{columns: cols, cells: cells}

		speaker, err := buildSpeaker(rec, rowIndex, fetchedAt)
		if err != nil {
			logger.Warn("Dropping unparseable speaker row",
				zap.Int("row", rowIndex),
				zap.Error(err),
			)
			continue
		}
		speakers = append(speakers, speaker)
	}

	return speakers
}

func buildSpeaker(rec rowRecord, index int, fetchedAt time.Time) (*domain.Speaker, error) {
	name := rec.str("name", "")

	slug := rec.str("slug", "")
	if slug == "" {
		slug = util.Slugify(name)
	}
	if slug == "" {
		slug = fmt.Sprintf("speaker-%d", index)
	}

	videos, err := parseVideos(rec.raw("videos"))
	if err != nil {
		return nil, dirErrors.NewParseError("invalid videos field", index, "videos", err)
	}

	testimonials, err := parseTestimonials(rec.raw("testimonials"))
	if err != nil {
		return nil, dirErrors.NewParseError("invalid testimonials field", index, "testimonials", err)
	}

	return &domain.Speaker{
		Slug:          slug,
		Name:          name,
		Title:         rec.str("title", ""),
		Bio:           rec.str("bio", ""),
		Image:         rec.str("image", placeholderImage),
		ImagePosition: rec.str("imageposition", ""),
		ImageOffsetY:  rec.str("imageoffsety", ""),
		Programs:      rec.csv("programs"),
		Industries:    rec.csv("industries"),
		Tags:          rec.csv("tags"),
		Languages:     rec.csv("languages"),
		Topics:        rec.csv("topics"),
		Expertise:     rec.csv("expertise"),
		Fee:           rec.str("fee", defaultFee),
		FeeRange:      rec.str("feerange", ""),
		Location:      rec.str("location", defaultLocation),
		LinkedIn:      rec.str("linkedin", ""),
		Twitter:       rec.str("twitter", ""),
		Website:       rec.str("website", ""),
		Featured:      rec.boolean("featured"),
		Listed:        rec.booleanDefaultTrue("listed"),
		IsVirtual:     rec.booleanDefaultTrue("isvirtual"),
		Videos:        videos,
		Testimonials:  testimonials,
		Ranking:       rec.integer("ranking", 0),
		LastUpdated:   rec.str("lastupdated", fetchedAt.UTC().Format(time.RFC3339)),
	}, nil
}

// parseVideos accepts either a JSON array (of video objects or URL strings)
// or plain comma-separated URLs. Malformed JSON fails the whole row.
func parseVideos(raw string) ([]domain.Video, error) {
	videos := make([]domain.Video, 0)
	if raw == "" {
		return videos, nil
	}

	if strings.HasPrefix(raw, "[") {
		var structured []domain.Video
		if err := json.Unmarshal([]byte(raw), &structured); err == nil {
			return structured, nil
		}
		var urls []string
		if err := json.Unmarshal([]byte(raw), &urls); err != nil {
			return nil, fmt.Errorf("malformed videos JSON: %w", err)
		}
		for _, u := range urls {
			if u = strings.TrimSpace(u); u != "" {
				videos = append(videos, domain.Video{URL: u})
			}
		}
		return videos, nil
	}

	for _, u := range util.SplitCSV(raw) {
		videos = append(videos, domain.Video{URL: u})
	}
	return videos, nil
}

func parseTestimonials(raw string) ([]domain.Testimonial, error) {
	testimonials := make([]domain.Testimonial, 0)
	if raw == "" {
		return testimonials, nil
	}

	if err := json.Unmarshal([]byte(raw), &testimonials); err != nil {
		return nil, fmt.Errorf("malformed testimonials JSON: %w", err)
	}
	if testimonials == nil {
		testimonials = make([]domain.Testimonial, 0)
	}
	return testimonials, nil
}
