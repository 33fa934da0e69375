package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type PostgresService struct {
	db          *sql.DB
	recentLimit int
	log         *zap.Logger
}

func NewPostgresService(dsn string, recentLimit int, logger *zap.Logger) (*PostgresService, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("empty postgres dsn")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensurePostgresLedgerSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &PostgresService{
		db:          db,
		recentLimit: recentLimit,
		log:         logger,
	}, nil
}

func (s *PostgresService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresService) StartBatch(ctx context.Context, batch BatchSummary) error {
	if strings.TrimSpace(batch.BatchID) == "" {
		return fmt.Errorf("batch id is required")
	}
	if batch.StartedAt.IsZero() {
		batch.StartedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sim_batch (
    batch_id, master_seed, matches, status, started_at, finished_at
)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (batch_id) DO NOTHING
`, batch.BatchID, batch.MasterSeed, batch.Matches, BatchRunning, batch.StartedAt)
	return err
}

func (s *PostgresService) RecordMatch(ctx context.Context, rec MatchRecord) error {
	if strings.TrimSpace(rec.BatchID) == "" {
		return fmt.Errorf("batch id is required")
	}
	playersRaw, err := json.Marshal(rec.Players)
	if err != nil {
		return err
	}
	if rec.PlayedAt.IsZero() {
		rec.PlayedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO sim_match (
    batch_id, match_index, seed, players_json, leaders, played_at
)
VALUES ($1, $2, $3, $4::jsonb, $5, $6)
ON CONFLICT (batch_id, match_index) DO UPDATE
SET
    seed = EXCLUDED.seed,
    players_json = EXCLUDED.players_json,
    leaders = EXCLUDED.leaders,
    played_at = EXCLUDED.played_at
`, rec.BatchID, rec.Index, rec.Seed, string(playersRaw), pq.Array(rec.Leaders), rec.PlayedAt); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
DELETE FROM sim_match_event WHERE batch_id = $1 AND match_index = $2
`, rec.BatchID, rec.Index); err != nil {
		return err
	}
	if len(rec.Events) > 0 {
		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("sim_match_event", "batch_id", "match_index", "seq", "event_type", "envelope_b64"))
		if err != nil {
			return err
		}
		for _, e := range rec.Events {
			if e.EventType == "" {
				e.EventType = "unknown"
			}
			if _, err := stmt.ExecContext(ctx, rec.BatchID, rec.Index, int64(e.Seq), e.EventType, e.EnvelopeB64); err != nil {
				_ = stmt.Close()
				return err
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			_ = stmt.Close()
			return err
		}
		if err := stmt.Close(); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresService) FinishBatch(ctx context.Context, batch BatchSummary) error {
	if strings.TrimSpace(batch.BatchID) == "" {
		return fmt.Errorf("batch id is required")
	}
	if batch.FinishedAt.IsZero() {
		batch.FinishedAt = time.Now().UTC()
	}
	if batch.StartedAt.IsZero() {
		batch.StartedAt = batch.FinishedAt
	}
	winsRaw, err := json.Marshal(batch.Wins)
	if err != nil {
		return err
	}
	summaryRaw, err := json.Marshal(batch.Summary)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO sim_batch (
    batch_id, master_seed, matches, status, started_at, finished_at, wins_json, summary_json
)
VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb)
ON CONFLICT (batch_id) DO UPDATE
SET
    master_seed = EXCLUDED.master_seed,
    matches = EXCLUDED.matches,
    status = EXCLUDED.status,
    started_at = EXCLUDED.started_at,
    finished_at = EXCLUDED.finished_at,
    wins_json = EXCLUDED.wins_json,
    summary_json = EXCLUDED.summary_json
`, batch.BatchID, batch.MasterSeed, batch.Matches, finishedStatus(batch.Status), batch.StartedAt, batch.FinishedAt,
		string(winsRaw), string(summaryRaw)); err != nil {
		return err
	}

	if s.recentLimit > 0 {
		if _, err := tx.ExecContext(ctx, `
WITH stale AS (
    SELECT batch_id
    FROM sim_batch
    ORDER BY finished_at DESC, batch_id DESC
    OFFSET $1
), dropped_batches AS (
    DELETE FROM sim_batch WHERE batch_id IN (SELECT batch_id FROM stale)
)
DELETE FROM sim_match m
WHERE m.batch_id IN (SELECT batch_id FROM stale)
   OR NOT EXISTS (SELECT 1 FROM sim_batch b WHERE b.batch_id = m.batch_id)
`, s.recentLimit); err != nil {
			s.log.Warn("[Ledger] trim batches failed", zap.Error(err))
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresService) ListRecent(ctx context.Context, limit int) ([]BatchSummary, error) {
	limit = normalizeLimit(limit)
	rows, err := s.db.QueryContext(ctx, `
SELECT batch_id, master_seed, matches, status, started_at, finished_at, wins_json, summary_json
FROM sim_batch
ORDER BY finished_at DESC, batch_id DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]BatchSummary, 0, limit)
	for rows.Next() {
		var item BatchSummary
		var winsRaw, summaryRaw []byte
		if err := rows.Scan(&item.BatchID, &item.MasterSeed, &item.Matches, &item.Status, &item.StartedAt, &item.FinishedAt, &winsRaw, &summaryRaw); err != nil {
			return nil, err
		}
		decodeBatchJSON(&item, winsRaw, summaryRaw)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresService) ListMatches(ctx context.Context, batchID string) ([]MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT match_index, seed, players_json, leaders, played_at
FROM sim_match
WHERE batch_id = $1
ORDER BY match_index ASC
`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MatchRecord, 0, 64)
	for rows.Next() {
		rec := MatchRecord{BatchID: batchID}
		var playersRaw []byte
		if err := rows.Scan(&rec.Index, &rec.Seed, &playersRaw, pq.Array(&rec.Leaders), &rec.PlayedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(playersRaw, &rec.Players); err != nil {
			return nil, fmt.Errorf("decode players: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresService) GetMatchEvents(ctx context.Context, batchID string, index int) ([]EventItem, error) {
	if strings.TrimSpace(batchID) == "" {
		return nil, ErrNotFound
	}
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
SELECT EXISTS (
    SELECT 1 FROM sim_match WHERE batch_id = $1 AND match_index = $2
)`, batchID, index).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT seq, event_type, envelope_b64
FROM sim_match_event
WHERE batch_id = $1
  AND match_index = $2
ORDER BY seq ASC
`, batchID, index)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]EventItem, 0, 128)
	for rows.Next() {
		var e EventItem
		var seq int64
		if err := rows.Scan(&seq, &e.EventType, &e.EnvelopeB64); err != nil {
			return nil, err
		}
		e.Seq = uint64(seq)
		events = append(events, e)
	}
	return events, rows.Err()
}

func ensurePostgresLedgerSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS sim_batch (
    batch_id TEXT PRIMARY KEY,
    master_seed BIGINT NOT NULL,
    matches INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'finished',
    started_at TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL,
    wins_json JSONB NOT NULL DEFAULT '{}'::jsonb,
    summary_json JSONB NOT NULL DEFAULT '{}'::jsonb
)`,
		`CREATE INDEX IF NOT EXISTS idx_sim_batch_finished ON sim_batch(finished_at DESC)`,
		`
CREATE TABLE IF NOT EXISTS sim_match (
    id BIGSERIAL PRIMARY KEY,
    batch_id TEXT NOT NULL,
    match_index INTEGER NOT NULL,
    seed BIGINT NOT NULL,
    players_json JSONB NOT NULL DEFAULT '[]'::jsonb,
    leaders BIGINT[] NOT NULL DEFAULT '{}',
    played_at TIMESTAMPTZ NOT NULL,
    UNIQUE (batch_id, match_index)
)`,
		`
CREATE TABLE IF NOT EXISTS sim_match_event (
    id BIGSERIAL PRIMARY KEY,
    batch_id TEXT NOT NULL,
    match_index INTEGER NOT NULL,
    seq BIGINT NOT NULL,
    event_type TEXT NOT NULL,
    envelope_b64 TEXT NOT NULL DEFAULT '',
    UNIQUE (batch_id, match_index, seq),
    FOREIGN KEY (batch_id, match_index) REFERENCES sim_match(batch_id, match_index) ON DELETE CASCADE
)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
