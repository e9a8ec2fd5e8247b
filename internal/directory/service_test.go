package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/podiumreach/speaker-directory-go/internal/domain"
)

type fakeSource struct {
	rows    [][]string
	err     error
	fetches int
}

func (f *fakeSource) FetchRows(_ context.Context) ([][]string, error) {
	f.fetches++
	return f.rows, f.err
}

type fakeSnapshots struct {
	snapshot []*domain.Speaker
	saved    []*domain.Speaker
	saves    int
}

func (f *fakeSnapshots) GetDirectorySnapshot(_ context.Context) ([]*domain.Speaker, bool) {
	if len(f.snapshot) == 0 {
		return nil, false
	}
	return f.snapshot, true
}

func (f *fakeSnapshots) SetDirectorySnapshot(_ context.Context, speakers []*domain.Speaker) {
	f.saved = speakers
	f.saves++
}

func testRows() [][]string {
	return [][]string{
		{"Slug", "Name", "Title", "Industries", "Featured", "Listed", "Ranking"},
		{"alice", "Alice Ngata", "Keynote Coach", "AI, Education", "true", "true", "70"},
		{"bob", "Bob Marsh", "Sales Leader", "Sales", "", "true", "90"},
		{"carol", "Carol Diaz", "Futurist", "AI", "true", "true", "90"},
		{"alice", "Alice Duplicate", "Impostor", "Finance", "", "true", "99"},
		{"dan", "Dan Ho", "Ghost", "AI", "", "false", "80"},
	}
}

func testFallback() []*domain.Speaker {
	return []*domain.Speaker{
		{Slug: "fallback-1", Name: "Fallback One", Listed: true, Ranking: 10},
		{Slug: "fallback-2", Name: "Fallback Two", Listed: true, Ranking: 20},
	}
}

func newTestService(source RowSource, snapshots SnapshotStore) *Service {
	return NewService(source, snapshots, nil, testFallback(), Config{
		TTL: time.Minute,
	}, zap.NewNop())
}

func TestGetAllSpeakersOrdering(t *testing.T) {
	src := &fakeSource{rows: testRows()}
	svc := newTestService(src, nil)

	speakers := svc.GetAllSpeakers(context.Background())
	if len(speakers) != 4 {
		t.Fatalf("expected 4 speakers after dedupe, got %d", len(speakers))
	}

	// Ranking descending; bob and carol tie at 90 and keep source order.
	wantOrder := []string{"bob", "carol", "dan", "alice"}
	for i, want := range wantOrder {
		if speakers[i].Slug != want {
			t.Errorf("position %d: expected %q, got %q", i, want, speakers[i].Slug)
		}
	}
}

func TestDedupeFirstOccurrenceWins(t *testing.T) {
	src := &fakeSource{rows: testRows()}
	svc := newTestService(src, nil)

	sp, ok := svc.GetSpeakerBySlug(context.Background(), "alice")
	if !ok {
		t.Fatal("expected alice to exist")
	}
	if sp.Name != "Alice Ngata" {
		t.Errorf("expected first occurrence to win, got %q", sp.Name)
	}
}

func TestRefreshIsCachedWithinTTL(t *testing.T) {
	src := &fakeSource{rows: testRows()}
	svc := newTestService(src, nil)

	ctx := context.Background()
	svc.GetAllSpeakers(ctx)
	svc.SearchSpeakers(ctx, "alice")
	svc.GetUniqueIndustries(ctx)

	if src.fetches != 1 {
		t.Errorf("expected a single fetch within TTL, got %d", src.fetches)
	}
}

func TestRefreshAfterTTLExpiry(t *testing.T) {
	src := &fakeSource{rows: testRows()}
	svc := NewService(src, nil, nil, testFallback(), Config{TTL: time.Nanosecond}, zap.NewNop())

	ctx := context.Background()
	svc.GetAllSpeakers(ctx)
	time.Sleep(time.Millisecond)
	svc.GetAllSpeakers(ctx)

	if src.fetches != 2 {
		t.Errorf("expected refetch after TTL expiry, got %d fetches", src.fetches)
	}
}

func TestFallbackOnSourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("source down")}
	svc := newTestService(src, nil)

	speakers := svc.GetAllSpeakers(context.Background())
	if len(speakers) != 2 {
		t.Fatalf("expected fallback set, got %d speakers", len(speakers))
	}
	if speakers[0].Slug != "fallback-2" {
		t.Errorf("fallback should be ranking-sorted too, got %q first", speakers[0].Slug)
	}
}

func TestFallbackOnHeaderOnlyRows(t *testing.T) {
	src := &fakeSource{rows: [][]string{{"Name", "Slug"}}}
	svc := newTestService(src, nil)

	speakers := svc.GetAllSpeakers(context.Background())
	if len(speakers) != 2 {
		t.Fatalf("expected fallback set for header-only response, got %d", len(speakers))
	}
}

func TestFallbackWhenNoSourceConfigured(t *testing.T) {
	svc := newTestService(nil, nil)

	speakers := svc.GetAllSpeakers(context.Background())
	if len(speakers) != 2 {
		t.Fatalf("expected fallback set without a source, got %d", len(speakers))
	}
}

func TestSnapshotPreferredOverFallback(t *testing.T) {
	snaps := &fakeSnapshots{snapshot: []*domain.Speaker{
		{Slug: "snap-1", Name: "Snap One", Listed: true, Ranking: 50},
	}}
	src := &fakeSource{err: errors.New("source down")}
	svc := newTestService(src, snaps)

	speakers := svc.GetAllSpeakers(context.Background())
	if len(speakers) != 1 || speakers[0].Slug != "snap-1" {
		t.Fatalf("expected snapshot rung to win over fallback, got %v", speakers)
	}
}

func TestSnapshotSavedAfterLiveRefresh(t *testing.T) {
	snaps := &fakeSnapshots{}
	src := &fakeSource{rows: testRows()}
	svc := newTestService(src, snaps)

	svc.GetAllSpeakers(context.Background())
	if snaps.saves != 1 {
		t.Fatalf("expected one snapshot save after live refresh, got %d", snaps.saves)
	}
	if len(snaps.saved) != 4 {
		t.Errorf("expected finalized collection snapshotted, got %d records", len(snaps.saved))
	}
}

func TestSnapshotNotSavedOnDegradedRefresh(t *testing.T) {
	snaps := &fakeSnapshots{}
	src := &fakeSource{err: errors.New("source down")}
	svc := newTestService(src, snaps)

	svc.GetAllSpeakers(context.Background())
	if snaps.saves != 0 {
		t.Errorf("degraded refresh must not overwrite the snapshot, got %d saves", snaps.saves)
	}
}

func TestGetFeaturedSpeakers(t *testing.T) {
	src := &fakeSource{rows: testRows()}
	svc := newTestService(src, nil)
	ctx := context.Background()

	featured := svc.GetFeaturedSpeakers(ctx, 0)
	if len(featured) != 2 {
		t.Fatalf("expected 2 featured speakers, got %d", len(featured))
	}
	if featured[0].Slug != "carol" {
		t.Errorf("expected highest-ranked featured first, got %q", featured[0].Slug)
	}

	limited := svc.GetFeaturedSpeakers(ctx, 1)
	if len(limited) != 1 || limited[0].Slug != "carol" {
		t.Errorf("expected limit to truncate, got %v", limited)
	}
}

func TestGetSpeakerBySlugMiss(t *testing.T) {
	src := &fakeSource{rows: testRows()}
	svc := newTestService(src, nil)

	if _, ok := svc.GetSpeakerBySlug(context.Background(), "nobody"); ok {
		t.Error("expected miss for unknown slug")
	}
}

func TestSearchSpeakers(t *testing.T) {
	src := &fakeSource{rows: testRows()}
	svc := newTestService(src, nil)
	ctx := context.Background()

	if got := svc.SearchSpeakers(ctx, "  "); len(got) != 4 {
		t.Errorf("blank query should return everything, got %d", len(got))
	}
	if got := svc.SearchSpeakers(ctx, "FUTURIST"); len(got) != 1 || got[0].Slug != "carol" {
		t.Errorf("expected case-insensitive title match, got %v", got)
	}
	if got := svc.SearchSpeakers(ctx, "education"); len(got) != 1 || got[0].Slug != "alice" {
		t.Errorf("expected industry match, got %v", got)
	}
	if got := svc.SearchSpeakers(ctx, "zzz"); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestGetUniqueIndustries(t *testing.T) {
	src := &fakeSource{rows: testRows()}
	svc := newTestService(src, nil)

	industries := svc.GetUniqueIndustries(context.Background())
	want := []string{"AI", "Education", "Sales"}
	if len(industries) != len(want) {
		t.Fatalf("expected %v, got %v", want, industries)
	}
	for i := range want {
		if industries[i] != want[i] {
			t.Errorf("expected %v, got %v", want, industries)
			break
		}
	}
}

func TestGetSpeakersByIndustry(t *testing.T) {
	src := &fakeSource{rows: testRows()}
	svc := newTestService(src, nil)
	ctx := context.Background()

	// dan is in AI but unlisted and must not appear.
	got := svc.GetSpeakersByIndustry(ctx, "AI")
	if len(got) != 2 {
		t.Fatalf("expected 2 listed AI speakers, got %d", len(got))
	}
	for _, sp := range got {
		if !sp.Listed {
			t.Errorf("unlisted speaker %q leaked into industry filter", sp.Slug)
		}
	}

	if got := svc.GetSpeakersByIndustry(ctx, ""); len(got) != 0 {
		t.Errorf("empty industry must match nothing, got %d", len(got))
	}
}

func TestSubscribeReceivesRefreshEvents(t *testing.T) {
	src := &fakeSource{rows: testRows()}
	svc := newTestService(src, nil)

	events, cancel := svc.Subscribe()
	defer cancel()

	svc.GetAllSpeakers(context.Background())

	select {
	case event := <-events:
		if event.Source != SourceSheets {
			t.Errorf("expected sheets source, got %q", event.Source)
		}
		if event.Count != 4 {
			t.Errorf("expected count 4, got %d", event.Count)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a refresh event")
	}
}

func TestNonNilSlicesAcrossSources(t *testing.T) {
	src := &fakeSource{err: errors.New("source down")}
	svc := newTestService(src, nil)

	for _, sp := range svc.GetAllSpeakers(context.Background()) {
		if sp.Industries == nil || sp.Programs == nil || sp.Tags == nil ||
			sp.Videos == nil || sp.Testimonials == nil {
			t.Errorf("speaker %q has nil multi-value fields", sp.Slug)
		}
	}
}
