package directory

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

var fetchedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestHeaderCanonicalization(t *testing.T) {
	rows := [][]string{
		{"  Fee Range ", "FEE-RANGE-IGNORED", "is_virtual", "Name"},
		{"$10k-$20k", "dup", "false", "Test Person"},
	}

	speakers := normalizeRows(rows, fetchedAt, zap.NewNop())
	if len(speakers) != 1 {
		t.Fatalf("expected 1 speaker, got %d", len(speakers))
	}

	sp := speakers[0]
	if sp.FeeRange != "$10k-$20k" {
		t.Errorf("expected first duplicate header to win, got %q", sp.FeeRange)
	}
	if sp.IsVirtual {
		t.Error("expected is_virtual false to parse")
	}
}

func TestDefaultsApplied(t *testing.T) {
	rows := [][]string{
		{"Name"},
		{"Jane Doe"},
	}

	speakers := normalizeRows(rows, fetchedAt, zap.NewNop())
	sp := speakers[0]

	if sp.Fee != "Inquire for Fee" {
		t.Errorf("expected fee default, got %q", sp.Fee)
	}
	if sp.Location != "N/A" {
		t.Errorf("expected location default, got %q", sp.Location)
	}
	if sp.Image != "/images/speakers/placeholder.jpg" {
		t.Errorf("expected placeholder image, got %q", sp.Image)
	}
	if sp.Featured {
		t.Error("featured must default to false")
	}
	if !sp.Listed {
		t.Error("listed must default to true")
	}
	if !sp.IsVirtual {
		t.Error("isVirtual must default to true")
	}
	if sp.Ranking != 0 {
		t.Errorf("ranking must default to 0, got %d", sp.Ranking)
	}
	if sp.LastUpdated != "2026-03-01T12:00:00Z" {
		t.Errorf("expected fetch time as lastUpdated, got %q", sp.LastUpdated)
	}
}

func TestBooleanLiteralOnly(t *testing.T) {
	rows := [][]string{
		{"Name", "Featured"},
		{"A", "true"},
		{"B", "True"},
		{"C", "1"},
		{"D", "yes"},
	}

	speakers := normalizeRows(rows, fetchedAt, zap.NewNop())
	if !speakers[0].Featured {
		t.Error(`"true" must parse as featured`)
	}
	for _, sp := range speakers[1:] {
		if sp.Featured {
			t.Errorf("%q: only literal lowercase true is accepted", sp.Name)
		}
	}
}

func TestSlugDerivation(t *testing.T) {
	rows := [][]string{
		{"Slug", "Name"},
		{"given-slug", "Has Slug"},
		{"", "Dr. Jane  O'Neil"},
		{"", ""},
	}

	speakers := normalizeRows(rows, fetchedAt, zap.NewNop())
	if speakers[0].Slug != "given-slug" {
		t.Errorf("explicit slug must win, got %q", speakers[0].Slug)
	}
	if speakers[1].Slug != "dr-jane-oneil" {
		t.Errorf("expected slugified name, got %q", speakers[1].Slug)
	}
	if speakers[2].Slug != "speaker-3" {
		t.Errorf("expected positional slug, got %q", speakers[2].Slug)
	}
}

func TestCSVFieldsSplitAndTrimmed(t *testing.T) {
	rows := [][]string{
		{"Name", "Industries", "Tags"},
		{"Jane Doe", " AI ,  Robotics ,, ", "keynote"},
	}

	sp := normalizeRows(rows, fetchedAt, zap.NewNop())[0]
	if len(sp.Industries) != 2 || sp.Industries[0] != "AI" || sp.Industries[1] != "Robotics" {
		t.Errorf("expected trimmed non-empty industries, got %v", sp.Industries)
	}
	if len(sp.Tags) != 1 || sp.Tags[0] != "keynote" {
		t.Errorf("expected single tag, got %v", sp.Tags)
	}
}

func TestRankingNumericForms(t *testing.T) {
	rows := [][]string{
		{"Name", "Ranking"},
		{"A", "87"},
		{"B", "87.0"},
		{"C", "not-a-number"},
	}

	speakers := normalizeRows(rows, fetchedAt, zap.NewNop())
	if speakers[0].Ranking != 87 || speakers[1].Ranking != 87 {
		t.Errorf("expected 87 for both numeric forms, got %d and %d",
			speakers[0].Ranking, speakers[1].Ranking)
	}
	if speakers[2].Ranking != 0 {
		t.Errorf("unparseable ranking must default to 0, got %d", speakers[2].Ranking)
	}
}

func TestVideosForms(t *testing.T) {
	rows := [][]string{
		{"Name", "Videos"},
		{"Objects", `[{"url":"https://youtu.be/abc","title":"Talk"}]`},
		{"Strings", `["https://youtu.be/one", "https://youtu.be/two"]`},
		{"CSV", "https://youtu.be/x, https://youtu.be/y"},
		{"Empty", ""},
	}

	speakers := normalizeRows(rows, fetchedAt, zap.NewNop())
	if len(speakers) != 4 {
		t.Fatalf("expected all 4 rows to parse, got %d", len(speakers))
	}

	if len(speakers[0].Videos) != 1 || speakers[0].Videos[0].Title != "Talk" {
		t.Errorf("structured videos: got %v", speakers[0].Videos)
	}
	if len(speakers[1].Videos) != 2 || speakers[1].Videos[0].URL != "https://youtu.be/one" {
		t.Errorf("string-array videos: got %v", speakers[1].Videos)
	}
	if len(speakers[2].Videos) != 2 || speakers[2].Videos[1].URL != "https://youtu.be/y" {
		t.Errorf("csv videos: got %v", speakers[2].Videos)
	}
	if len(speakers[3].Videos) != 0 || speakers[3].Videos == nil {
		t.Errorf("empty videos must be an empty non-nil slice, got %v", speakers[3].Videos)
	}
}

func TestMalformedJSONDropsRow(t *testing.T) {
	rows := [][]string{
		{"Name", "Testimonials"},
		{"Good", `[{"quote":"great","author":"Someone"}]`},
		{"Bad", `[{"quote": unterminated`},
	}

	speakers := normalizeRows(rows, fetchedAt, zap.NewNop())
	if len(speakers) != 1 {
		t.Fatalf("expected malformed row dropped, got %d speakers", len(speakers))
	}
	if speakers[0].Name != "Good" {
		t.Errorf("wrong survivor: %q", speakers[0].Name)
	}
	if speakers[0].Testimonials[0].Author != "Someone" {
		t.Errorf("testimonial not parsed: %v", speakers[0].Testimonials)
	}
}

func TestShortRowsReadAsEmpty(t *testing.T) {
	rows := [][]string{
		{"Name", "Title", "Location"},
		{"Only Name"},
	}

	sp := normalizeRows(rows, fetchedAt, zap.NewNop())[0]
	if sp.Name != "Only Name" || sp.Title != "" || sp.Location != "N/A" {
		t.Errorf("short row handling wrong: %+v", sp)
	}
}

func TestColumnsInAnyOrder(t *testing.T) {
	rows := [][]string{
		{"Ranking", "Industries", "Name", "Featured", "Slug"},
		{"95", "AI, Robotics", "Jane Doe", "true", ""},
	}

	sp := normalizeRows(rows, fetchedAt, zap.NewNop())[0]
	if sp.Slug != "jane-doe" || sp.Ranking != 95 || !sp.Featured {
		t.Errorf("reordered columns parsed wrong: %+v", sp)
	}
	if len(sp.Industries) != 2 || sp.Industries[1] != "Robotics" {
		t.Errorf("industries parsed wrong: %v", sp.Industries)
	}
}
