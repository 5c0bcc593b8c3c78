// Package game runs "guess the year" rounds for scanned tracks.
package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justestif/music-blast/internal/catalog"
	"github.com/justestif/music-blast/internal/clustering"
	"github.com/justestif/music-blast/internal/scan"
)

// Game errors.
var (
	ErrRoundNotFound  = errors.New("round not found")
	ErrAlreadyGuessed = errors.New("round already guessed")
	ErrInvalidRound   = errors.New("invalid round")
	ErrInvalidGuess   = errors.New("invalid guess")
)

// Guesses outside this range are rejected.
const (
	MinGuessYear = 1900
	MaxGuessYear = 2100
)

// Round is one track a player has to date.
type Round struct {
	ID        uuid.UUID
	PlayerID  string
	TrackID   string
	Identity  catalog.TrackIdentity
	Source    scan.Source
	Guess     *int
	Points    int
	CreatedAt time.Time
	GuessedAt *time.Time
}

// Guessed reports whether the round has been scored.
func (r Round) Guessed() bool {
	return r.Guess != nil
}

// Store persists rounds.
//
// SaveGuess must be atomic: it fails with ErrAlreadyGuessed when the round
// already has a guess and with ErrRoundNotFound when it does not exist.
// FindRound returns the player's latest round for a track, or
// ErrRoundNotFound.
type Store interface {
	CreateRound(ctx context.Context, r *Round) error
	GetRound(ctx context.Context, id uuid.UUID) (*Round, error)
	FindRound(ctx context.Context, playerID, trackID string) (*Round, error)
	SaveGuess(ctx context.Context, id uuid.UUID, guess, points int, at time.Time) error
	PlayerRounds(ctx context.Context, playerID string) ([]Round, error)
}

// Identifier resolves a track id to its identity.
type Identifier interface {
	Identify(ctx context.Context, trackID string) (catalog.TrackIdentity, scan.Source)
}

type catalogIdentifier struct{}

func (catalogIdentifier) Identify(_ context.Context, trackID string) (catalog.TrackIdentity, scan.Source) {
	if catalog.Known(trackID) {
		return catalog.Resolve(trackID), scan.SourceCatalog
	}
	return catalog.Resolve(trackID), scan.SourceFallback
}

// Service handles round lifecycle and scoring.
type Service struct {
	store      Store
	identifier Identifier
	eras       clustering.Config
	now        func() time.Time
	logger     *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithIdentifier sets how track ids are resolved. Defaults to the catalogue.
func WithIdentifier(id Identifier) Option {
	return func(s *Service) {
		if id != nil {
			s.identifier = id
		}
	}
}

// WithEraConfig sets the era clustering parameters used by Summary.
func WithEraConfig(cfg clustering.Config) Option {
	return func(s *Service) {
		s.eras = cfg
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
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

// New creates a game service backed by store.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		identifier: catalogIdentifier{},
		eras:       clustering.DefaultConfig(),
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a round of trackID for playerID. A player gets one round per
// track: if one exists already, open or guessed, it is returned instead.
func (s *Service) Start(ctx context.Context, playerID, trackID string) (*Round, error) {
	playerID = strings.TrimSpace(playerID)
	trackID = strings.TrimSpace(trackID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: missing player id", ErrInvalidRound)
	}
	if trackID == "" {
		return nil, fmt.Errorf("%w: missing track id", ErrInvalidRound)
	}

	existing, err := s.store.FindRound(ctx, playerID, trackID)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, ErrRoundNotFound):
		return nil, fmt.Errorf("finding round: %w", err)
	}

	identity, source := s.identifier.Identify(ctx, trackID)
	round := &Round{
		ID:        uuid.New(),
		PlayerID:  playerID,
		TrackID:   trackID,
		Identity:  identity,
		Source:    source,
		CreatedAt: s.now(),
	}

	if err := s.store.CreateRound(ctx, round); err != nil {
		return nil, fmt.Errorf("creating round: %w", err)
	}

	s.logger.Debug("round started",
		zap.Stringer("round_id", round.ID),
		zap.String("player_id", playerID),
		zap.String("track_id", trackID),
	)
	return round, nil
}

// Round returns a stored round.
func (s *Service) Round(ctx context.Context, id uuid.UUID) (*Round, error) {
	round, err := s.store.GetRound(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting round: %w", err)
	}
	return round, nil
}

// Guess scores year against the round's release year. A round can be
// guessed once.
func (s *Service) Guess(ctx context.Context, id uuid.UUID, year int) (*Round, error) {
	if year < MinGuessYear || year > MaxGuessYear {
		return nil, fmt.Errorf("%w: year %d outside %d-%d", ErrInvalidGuess, year, MinGuessYear, MaxGuessYear)
	}

	round, err := s.store.GetRound(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting round: %w", err)
	}
	if round.Guessed() {
		return nil, ErrAlreadyGuessed
	}

	points := Score(year, round.Identity.ReleaseYear)
	at := s.now()
	if err := s.store.SaveGuess(ctx, id, year, points, at); err != nil {
		return nil, fmt.Errorf("saving guess: %w", err)
	}

	round.Guess = &year
	round.Points = points
	round.GuessedAt = &at

	s.logger.Info("round guessed",
		zap.Stringer("round_id", id),
		zap.Int("guess", year),
		zap.Int("release_year", round.Identity.ReleaseYear),
		zap.Int("points", points),
	)
	return round, nil
}

// Summary is a player's running totals.
type Summary struct {
	PlayerID     string
	Rounds       int
	Guessed      int
	TotalPoints  int
	ExactGuesses int
	AverageError float64
	Eras         []clustering.Era
	Outliers     int
	Text         string
}

// Summary computes totals and the era breakdown for playerID.
func (s *Service) Summary(ctx context.Context, playerID string) (*Summary, error) {
	rounds, err := s.store.PlayerRounds(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("loading player rounds: %w", err)
	}

	sum := &Summary{PlayerID: playerID, Rounds: len(rounds)}
	totalOff := 0
	for _, r := range rounds {
		if !r.Guessed() {
			continue
		}
		sum.Guessed++
		sum.TotalPoints += r.Points
		off := yearsOff(*r.Guess, r.Identity.ReleaseYear)
		totalOff += off
		if off == 0 {
			sum.ExactGuesses++
		}
	}
	if sum.Guessed > 0 {
		sum.AverageError = float64(totalOff) / float64(sum.Guessed)
	}

	eras, outliers := EraBreakdown(rounds, s.eras)
	sum.Eras = eras
	sum.Outliers = len(outliers)
	sum.Text = clustering.FormatEraSummary(eras, outliers)
	return sum, nil
}

// EraBreakdown clusters the guessed rounds by release year. Rounds
// without a guess are ignored.
func EraBreakdown(rounds []Round, cfg clustering.Config) ([]clustering.Era, []clustering.Guess) {
	var guesses []clustering.Guess
	for _, r := range rounds {
		if !r.Guessed() {
			continue
		}
		guesses = append(guesses, clustering.Guess{
			TrackID:     r.TrackID,
			Name:        r.Identity.Name,
			Artist:      r.Identity.Artist,
			ReleaseYear: r.Identity.ReleaseYear,
			GuessYear:   *r.Guess,
		})
	}
	return clustering.DetectEras(guesses, cfg)
}
