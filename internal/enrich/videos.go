package enrich

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"

	"github.com/podiumreach/speaker-directory-go/internal/constants"
	"github.com/podiumreach/speaker-directory-go/internal/domain"
	"github.com/podiumreach/speaker-directory-go/internal/util"
)

// youtubeURLPattern matches watch, short-link, shorts and embed URL forms.
var youtubeURLPattern = regexp.MustCompile(`(?:youtube\.com/(?:watch\?v=|shorts/|embed/)|youtu\.be/)([A-Za-z0-9_-]{11})`)

// isoDurationPattern matches ISO 8601 durations as returned by the YouTube
// Data API, e.g. "PT1H2M3S".
var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ExtractVideoID pulls the 11-character YouTube video id out of a URL, or
// returns "" when the URL is not a recognizable YouTube link.
func ExtractVideoID(url string) string {
	matches := youtubeURLPattern.FindStringSubmatch(url)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

// Enricher resolves bare video URLs into structured video records. With a
// YouTube API key it batches metadata lookups; without one it falls back to
// scraping the watch page title. Enrichment never fails a speaker record.
type Enricher struct {
	yt         *youtubeapi.Service
	httpClient *http.Client
	logger     *zap.Logger
}

func NewEnricher(ctx context.Context, apiKey string, logger *zap.Logger) *Enricher {
	e := &Enricher{
		httpClient: &http.Client{
			Timeout: constants.EnrichConfig.ScrapeTimeout,
		},
		logger: logger,
	}

	if apiKey != "" {
		svc, err := youtubeapi.NewService(ctx, option.WithAPIKey(apiKey))
		if err != nil {
			logger.Warn("Failed to create YouTube service, falling back to page scraping", zap.Error(err))
		} else {
			e.yt = svc
			logger.Info("Video enrichment using YouTube Data API")
		}
	} else {
		logger.Info("Video enrichment using page scraping (no YouTube API key)")
	}

	return e
}

// EnrichSpeakers derives ids and thumbnails for every recognizable YouTube
// URL and fills missing titles from the API or the watch page.
func (e *Enricher) EnrichSpeakers(ctx context.Context, speakers []*domain.Speaker) {
	pending := make(map[string][]*domain.Video)

	for _, sp := range speakers {
		for i := range sp.Videos {
			video := &sp.Videos[i]
			if video.ID == "" {
				video.ID = ExtractVideoID(video.URL)
			}
			if video.ID == "" {
				continue
			}
			video.Source = "youtube"
			if video.Thumbnail == "" {
				video.Thumbnail = fmt.Sprintf(constants.EnrichConfig.ThumbnailFormat, video.ID)
			}
			if video.Title == "" {
				pending[video.ID] = append(pending[video.ID], video)
			}
		}
	}

	if len(pending) == 0 {
		return
	}

	if e.yt != nil {
		e.fillFromAPI(ctx, pending)
		return
	}
	e.fillFromScrape(ctx, pending)
}

func (e *Enricher) fillFromAPI(ctx context.Context, pending map[string][]*domain.Video) {
	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}

	resolved := 0
	for start := 0; start < len(ids); start += constants.EnrichConfig.BatchSize {
		end := util.Min(start+constants.EnrichConfig.BatchSize, len(ids))
		batch := ids[start:end]

		resp, err := e.yt.Videos.List([]string{"snippet", "contentDetails"}).
			Id(batch...).
			Context(ctx).
			Do()
		if err != nil {
			e.logger.Warn("YouTube metadata lookup failed",
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			continue
		}

		for _, item := range resp.Items {
			videos, ok := pending[item.Id]
			if !ok {
				continue
			}
			title := ""
			if item.Snippet != nil {
				title = item.Snippet.Title
			}
			duration := ""
			if item.ContentDetails != nil {
				duration = FormatDuration(item.ContentDetails.Duration)
			}
			for _, video := range videos {
				video.Title = title
				if video.Duration == "" {
					video.Duration = duration
				}
			}
			resolved++
		}
	}

	e.logger.Debug("Video metadata enriched via API",
		zap.Int("requested", len(ids)),
		zap.Int("resolved", resolved),
	)
}

func (e *Enricher) fillFromScrape(ctx context.Context, pending map[string][]*domain.Video) {
	var mu sync.Mutex
	resolved := 0

	p := pool.New().WithMaxGoroutines(constants.EnrichConfig.MaxConcurrency)
	for id, videos := range pending {
		p.Go(func() {
			title, err := e.scrapeTitle(ctx, id)
			if err != nil || title == "" {
				e.logger.Debug("Video title scrape failed", zap.String("video_id", id), zap.Error(err))
				return
			}
			mu.Lock()
			for _, video := range videos {
				video.Title = title
			}
			resolved++
			mu.Unlock()
		})
	}
	p.Wait()

	e.logger.Debug("Video metadata enriched via scraping",
		zap.Int("requested", len(pending)),
		zap.Int("resolved", resolved),
	)
}

func (e *Enricher) scrapeTitle(ctx context.Context, videoID string) (string, error) {
	url := "https://www.youtube.com/watch?v=" + videoID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; SpeakerDirectoryBot/1.0)")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	title = strings.TrimSuffix(title, " - YouTube")
	return title, nil
}

// FormatDuration converts an ISO 8601 duration into a compact h:mm:ss or
// m:ss display form. Unrecognized input is returned unchanged.
func FormatDuration(iso string) string {
	matches := isoDurationPattern.FindStringSubmatch(iso)
	if matches == nil {
		return iso
	}

	hours, minutes, seconds := atoi(matches[1]), atoi(matches[2]), atoi(matches[3])
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
