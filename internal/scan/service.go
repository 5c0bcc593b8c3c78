// Package scan turns scanned QR payloads into playable game cards.
package scan

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/justestif/music-blast/internal/catalog"
	"github.com/justestif/music-blast/internal/qr"
	"github.com/justestif/music-blast/internal/spotify"
)

// ErrBusy is returned while a previous scan from the same device is still
// being handled or its reset delay has not elapsed.
var ErrBusy = errors.New("scan already in progress")

var errNoReleaseYear = errors.New("live metadata has no release year")

// Source names where a track identity came from.
type Source string

const (
	SourceCatalog  Source = "catalog"
	SourceSpotify  Source = "spotify"
	SourceFallback Source = "fallback"
)

// MetadataFetcher looks up live track metadata.
type MetadataFetcher interface {
	TrackInfo(ctx context.Context, trackID string) (*spotify.TrackInfo, error)
}

// Record is a single handled scan.
type Record struct {
	DeviceID  string
	Raw       string
	Intent    qr.Intent
	ScannedAt time.Time
}

// Recorder persists scan history.
type Recorder interface {
	RecordScan(ctx context.Context, rec Record) error
}

// Result is the outcome of handling one scan.
type Result struct {
	Intent   qr.Intent
	Identity *catalog.TrackIdentity // Set for track intents only
	Source   Source
}

// Service handles scans: classify, resolve tracks, record history.
type Service struct {
	latch      *Latch
	metadata   MetadataFetcher
	recorder   Recorder
	resetDelay time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMetadata enables live metadata lookups for tracks outside the catalogue.
func WithMetadata(m MetadataFetcher) Option {
	return func(s *Service) {
		s.metadata = m
	}
}

// WithRecorder enables scan history.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithResetDelay sets how long a device stays locked after a scan.
func WithResetDelay(d time.Duration) Option {
	return func(s *Service) {
		s.resetDelay = d
	}
}

// WithLatch replaces the latch (used by tests to control timers).
func WithLatch(l *Latch) Option {
	return func(s *Service) {
		s.latch = l
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a scan service.
func New(opts ...Option) *Service {
	s := &Service{
		latch:      NewLatch(),
		resetDelay: DefaultResetDelay,
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle processes one scan from deviceID. Invalid payloads return the
// classified result together with qr.ErrClassificationInvalid.
func (s *Service) Handle(ctx context.Context, deviceID, raw string) (*Result, error) {
	if !s.latch.TryAcquire(deviceID) {
		return nil, ErrBusy
	}
	defer s.latch.Release(deviceID, s.resetDelay)

	intent := qr.Classify(raw)
	s.record(ctx, Record{
		DeviceID:  deviceID,
		Raw:       raw,
		Intent:    intent,
		ScannedAt: s.now(),
	})

	if err := intent.Err(); err != nil {
		s.logger.Info("invalid scan", zap.String("device", deviceID))
		return &Result{Intent: intent}, err
	}

	result := &Result{Intent: intent}
	if intent.Kind == qr.KindTrack {
		identity, source := s.Identify(ctx, intent.ID)
		result.Identity = &identity
		result.Source = source
	}

	s.logger.Info("scan handled",
		zap.String("device", deviceID),
		zap.Stringer("kind", intent.Kind),
		zap.String("source", string(result.Source)),
	)
	return result, nil
}

// Identify resolves a track id. Curated catalogue entries win, then live
// metadata when configured, then the deterministic fallback. Live results
// without a usable release year count as failures. It never fails.
func (s *Service) Identify(ctx context.Context, trackID string) (catalog.TrackIdentity, Source) {
	if catalog.Known(trackID) {
		return catalog.Resolve(trackID), SourceCatalog
	}

	if s.metadata != nil {
		info, err := s.metadata.TrackInfo(ctx, trackID)
		if err == nil && info.ReleaseYear == 0 {
			err = errNoReleaseYear
		}
		if err == nil {
			return info.Identity(), SourceSpotify
		}
		s.logger.Warn("live metadata unavailable, using fallback",
			zap.String("track_id", trackID),
			zap.Error(err),
		)
	}

	return catalog.Resolve(trackID), SourceFallback
}

func (s *Service) record(ctx context.Context, rec Record) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordScan(ctx, rec); err != nil {
		// History is best effort; the scan itself still succeeds.
		s.logger.Warn("recording scan failed", zap.Error(err))
	}
}
