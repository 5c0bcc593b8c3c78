package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/music-blast/internal/game"
	"github.com/justestif/music-blast/internal/scan"
)

// RoundRepository stores game rounds.
type RoundRepository struct {
	pool *pgxpool.Pool
}

const roundColumns = `id, player_id, track_id, name, artist, album_art, release_year,
	audio_url, source, guess, points, created_at, guessed_at`

// CreateRound inserts a new round.
func (r *RoundRepository) CreateRound(ctx context.Context, round *game.Round) error {
	query := `
		INSERT INTO rounds (id, player_id, track_id, name, artist, album_art, release_year, audio_url, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if round.ID == uuid.Nil {
		round.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, query,
		round.ID,
		round.PlayerID,
		round.TrackID,
		round.Identity.Name,
		round.Identity.Artist,
		round.Identity.AlbumArt,
		round.Identity.ReleaseYear,
		round.Identity.AudioURL,
		string(round.Source),
		round.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting round: %w", err)
	}
	return nil
}

// GetRound retrieves a round by ID.
func (r *RoundRepository) GetRound(ctx context.Context, id uuid.UUID) (*game.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`

	round, err := scanRound(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %w", game.ErrRoundNotFound, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying round: %w", err)
	}
	return round, nil
}

// FindRound retrieves the player's latest round for a track.
func (r *RoundRepository) FindRound(ctx context.Context, playerID, trackID string) (*game.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds
		WHERE player_id = $1 AND track_id = $2
		ORDER BY created_at DESC
		LIMIT 1`

	round, err := scanRound(r.pool.QueryRow(ctx, query, playerID, trackID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %w", game.ErrRoundNotFound, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying round: %w", err)
	}
	return round, nil
}

// SaveGuess stores the guess if the round has none yet.
func (r *RoundRepository) SaveGuess(ctx context.Context, id uuid.UUID, guess, points int, at time.Time) error {
	query := `
		UPDATE rounds
		SET guess = $2, points = $3, guessed_at = $4
		WHERE id = $1 AND guess IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, id, guess, points, at)
	if err != nil {
		return fmt.Errorf("updating round: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Nothing updated: either the round is missing or already guessed.
	var exists bool
	err = r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rounds WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking round: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %w", game.ErrRoundNotFound, ErrNotFound)
	}
	return game.ErrAlreadyGuessed
}

// PlayerRounds retrieves all rounds for a player, oldest first.
func (r *RoundRepository) PlayerRounds(ctx context.Context, playerID string) ([]game.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE player_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying player rounds: %w", err)
	}
	defer rows.Close()

	var rounds []game.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning round: %w", err)
		}
		rounds = append(rounds, *round)
	}
	return rounds, rows.Err()
}

func scanRound(row pgx.Row) (*game.Round, error) {
	var (
		round  game.Round
		source string
	)
	err := row.Scan(
		&round.ID,
		&round.PlayerID,
		&round.TrackID,
		&round.Identity.Name,
		&round.Identity.Artist,
		&round.Identity.AlbumArt,
		&round.Identity.ReleaseYear,
		&round.Identity.AudioURL,
		&source,
		&round.Guess,
		&round.Points,
		&round.CreatedAt,
		&round.GuessedAt,
	)
	if err != nil {
		return nil, err
	}
	round.Source = scan.Source(source)
	return &round, nil
}

var _ game.Store = (*RoundRepository)(nil)
