package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"epextract/internal/common/config"
	"epextract/internal/common/events"
	"epextract/internal/extractor/parse"
	"epextract/internal/store"
	"epextract/pkg/models"

	"github.com/sirupsen/logrus"
)

// ErrNoEpisodes is returned when the listing page yields no episode links
// under either filter rule
var ErrNoEpisodes = errors.New("no episode links found")

// PageFetcher fetches a page's raw markup
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// LinkResolver resolves an intermediate page into a final download link
type LinkResolver interface {
	Resolve(ctx context.Context, url string) (string, error)
}

// ExtractorService runs the extraction pipeline: listing fetch, episode
// filtering, then per-episode Instant DL resolution and browser polling,
// strictly sequentially with fixed throttling delays toward the target site.
type ExtractorService struct {
	cfg     *config.ExtractorConfig
	log     *logrus.Logger
	fetcher PageFetcher
	poller  LinkResolver
	store   *store.Store
	events  events.Sink
}

// NewExtractorService creates a new ExtractorService
func NewExtractorService(cfg *config.ExtractorConfig, log *logrus.Logger, fetcher PageFetcher, poller LinkResolver, st *store.Store, sink events.Sink) *ExtractorService {
	if sink == nil {
		sink = events.NopSink{}
	}
	return &ExtractorService{
		cfg:     cfg,
		log:     log,
		fetcher: fetcher,
		poller:  poller,
		store:   st,
		events:  sink,
	}
}

// ProcessMainURL runs the full pipeline for one listing URL. The only two
// abort conditions are a listing fetch failure and an empty episode filter;
// every per-episode failure is captured in that episode's result and the run
// carries on. The finished run is persisted regardless of individual
// failures.
func (s *ExtractorService) ProcessMainURL(ctx context.Context, mainURL string) (*models.RunRecord, error) {
	s.log.WithField("url", mainURL).Info("Processing main URL")

	html, err := s.fetcher.Fetch(ctx, mainURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch main page: %w", err)
	}

	links, err := parse.ExtractEpisodeLinks(html, mainURL)
	if err != nil {
		return nil, fmt.Errorf("parsing main page: %w", err)
	}
	if len(links) == 0 {
		return nil, ErrNoEpisodes
	}
	s.log.WithField("count", len(links)).Info("Found episode links")

	record := models.RunRecord{
		MainURL:     mainURL,
		ProcessedAt: time.Now().Format(time.RFC3339),
	}
	stats := models.Stats{TotalEpisodes: len(links)}

	for i, ep := range links {
		s.log.WithFields(logrus.Fields{
			"episode":  ep.EpisodeName,
			"progress": fmt.Sprintf("%d/%d", i+1, len(links)),
			"url":      ep.EpisodeURL,
		}).Info("Processing episode")

		result := s.processEpisode(ctx, ep)
		record.Episodes = append(record.Episodes, result)

		stats.Processed++
		switch result.Status {
		case models.StatusSuccess:
			stats.Successful++
		case models.StatusPartial:
			stats.Partial++
		case models.StatusFailed:
			stats.Failed++
		}
		s.publishProgress(result, stats)

		// Longer delay after a successful extraction to be respectful to the
		// target site
		if result.Status == models.StatusSuccess && i < len(links)-1 {
			s.sleep(ctx, s.cfg.EpisodeDelay())
		}
	}

	record.Tally()

	if err := s.store.Append(record); err != nil {
		s.log.WithError(err).Error("Failed to persist run record")
	}

	s.events.Publish(models.ExtractLog{Status: "complete", Stats: &stats})
	s.log.WithFields(logrus.Fields{
		"total":      record.TotalEpisodes,
		"successful": record.Successful,
		"partial":    record.Partial,
		"failed":     record.Failed,
	}).Info("Run complete")

	return &record, nil
}

// processEpisode handles one episode end to end. A panic anywhere inside is
// recovered into a failed result so a single bad episode cannot abort the
// run.
func (s *ExtractorService) processEpisode(ctx context.Context, ep models.EpisodeLink) (result models.EpisodeResult) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithFields(logrus.Fields{
				"episode": ep.EpisodeName,
				"panic":   r,
			}).Error("Episode processing panicked")
			result = models.EpisodeResult{
				Episode: ep.EpisodeName,
				Status:  models.StatusFailed,
				Error:   fmt.Sprint(r),
			}
		}
	}()

	episodeHTML, err := s.fetcher.Fetch(ctx, ep.EpisodeURL)
	if err != nil {
		s.log.WithError(err).WithField("episode", ep.EpisodeName).Warn("Failed to fetch episode page")
		return models.EpisodeResult{
			Episode: ep.EpisodeName,
			Status:  models.StatusFailed,
			Error:   "Instant DL link not found",
		}
	}

	instantURL, ok := parse.FindInstantDLLink(episodeHTML)
	if !ok {
		s.log.WithField("episode", ep.EpisodeName).Warn("No Instant DL link found")
		return models.EpisodeResult{
			Episode: ep.EpisodeName,
			Status:  models.StatusFailed,
			Error:   "Instant DL link not found",
		}
	}
	s.log.WithField("url", instantURL).Info("Found Instant DL link")

	// Short pause before opening a browser session on the intermediate page
	s.sleep(ctx, s.cfg.PrePollDelay())

	finalLink, err := s.poller.Resolve(ctx, instantURL)
	if err != nil {
		s.log.WithError(err).WithField("episode", ep.EpisodeName).Warn("Could not resolve final download link")
		return models.EpisodeResult{
			Episode:      ep.EpisodeName,
			EpisodeURL:   ep.EpisodeURL,
			InstantDLURL: instantURL,
			Status:       models.StatusPartial,
			Error:        "Final download link not found with headless browser",
		}
	}

	return models.EpisodeResult{
		Episode:           ep.EpisodeName,
		EpisodeURL:        ep.EpisodeURL,
		InstantDLURL:      instantURL,
		FinalDownloadLink: finalLink,
		Status:            models.StatusSuccess,
		Timestamp:         time.Now().Format(time.RFC3339),
	}
}

// publishProgress pushes one episode's outcome to the event sink
func (s *ExtractorService) publishProgress(result models.EpisodeResult, stats models.Stats) {
	s.events.Publish(models.ExtractLog{
		Status: result.Status,
		Error:  result.Error,
		Data:   &result,
		Stats:  &stats,
	})
}

// sleep waits for d, returning early if ctx is canceled
func (s *ExtractorService) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
