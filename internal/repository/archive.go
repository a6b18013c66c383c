package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rocketscienceinc/avalon-backend/internal/entity"
)

var ErrArchivedGameNotFound = errors.New("archived game not found")

// ArchivedGame is the summary row kept after a game ends; live state is
// dropped from redis once a game is over.
type ArchivedGame struct {
	ID             string
	Winner         entity.Alignment
	Reason         string
	PlayerCount    int
	MissionResults []string
	FinishedAt     time.Time
}

type ArchiveRepository interface {
	Save(ctx context.Context, game *entity.Game) error
	Find(ctx context.Context, id string) (*ArchivedGame, error)
}

type gameArchive struct {
	conn *sql.DB
}

func NewArchiveRepository(conn *sql.DB) ArchiveRepository {
	return &gameArchive{
		conn: conn,
	}
}

func (that *gameArchive) Save(ctx context.Context, game *entity.Game) error {
	if game.Outcome == nil {
		return fmt.Errorf("can't archive game %s: no outcome", game.ID)
	}

	query := `INSERT OR REPLACE INTO game_archive
		(id, winner, reason, player_count, mission_results, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := that.conn.ExecContext(ctx, query,
		game.ID,
		string(game.Outcome.Winner),
		game.Outcome.Reason,
		game.Config.PlayerCount,
		strings.Join(game.MissionResults, ","),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("can't save archived game: %w", err)
	}

	return nil
}

func (that *gameArchive) Find(ctx context.Context, id string) (*ArchivedGame, error) {
	query := `SELECT id, winner, reason, player_count, mission_results, finished_at
		FROM game_archive WHERE id = ?`

	var archived ArchivedGame
	var winner, results string

	err := that.conn.QueryRowContext(ctx, query, id).
		Scan(&archived.ID, &winner, &archived.Reason, &archived.PlayerCount, &results, &archived.FinishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArchivedGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find archived game: %w", err)
	}

	archived.Winner = entity.Alignment(winner)
	if results != "" {
		archived.MissionResults = strings.Split(results, ",")
	}

	return &archived, nil
}
