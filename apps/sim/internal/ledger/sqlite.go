package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const defaultLocalDBName = "brewsim_ledger.db"

type SQLiteService struct {
	db          *sql.DB
	recentLimit int
	log         *zap.Logger
}

func NewSQLiteService(dbPath string, recentLimit int, logger *zap.Logger) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteLedgerSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteService{
		db:          db,
		recentLimit: recentLimit,
		log:         logger,
	}, nil
}

func (s *SQLiteService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteService) StartBatch(ctx context.Context, batch BatchSummary) error {
	if strings.TrimSpace(batch.BatchID) == "" {
		return fmt.Errorf("batch id is required")
	}
	if batch.StartedAt.IsZero() {
		batch.StartedAt = time.Now().UTC()
	}
	startedMs := batch.StartedAt.UTC().UnixMilli()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sim_batch (
    batch_id, master_seed, matches, status, started_at_ms, finished_at_ms
)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (batch_id) DO NOTHING
`, batch.BatchID, batch.MasterSeed, batch.Matches, BatchRunning, startedMs, startedMs)
	return err
}

func (s *SQLiteService) RecordMatch(ctx context.Context, rec MatchRecord) error {
	if strings.TrimSpace(rec.BatchID) == "" {
		return fmt.Errorf("batch id is required")
	}
	playersRaw, err := json.Marshal(rec.Players)
	if err != nil {
		return err
	}
	leadersRaw, err := json.Marshal(rec.Leaders)
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
    batch_id, match_index, seed, players_json, leaders_json, played_at_ms
)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (batch_id, match_index) DO UPDATE
SET
    seed = excluded.seed,
    players_json = excluded.players_json,
    leaders_json = excluded.leaders_json,
    played_at_ms = excluded.played_at_ms
`, rec.BatchID, rec.Index, rec.Seed, string(playersRaw), string(leadersRaw), rec.PlayedAt.UTC().UnixMilli()); err != nil {
		return err
	}

	for _, e := range rec.Events {
		if e.EventType == "" {
			e.EventType = "unknown"
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO sim_match_event (
    batch_id, match_index, seq, event_type, envelope_b64
)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (batch_id, match_index, seq) DO UPDATE
SET
    event_type = excluded.event_type,
    envelope_b64 = excluded.envelope_b64
`, rec.BatchID, rec.Index, int64(e.Seq), e.EventType, e.EnvelopeB64); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteService) FinishBatch(ctx context.Context, batch BatchSummary) error {
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
    batch_id, master_seed, matches, status, started_at_ms, finished_at_ms, wins_json, summary_json
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (batch_id) DO UPDATE
SET
    master_seed = excluded.master_seed,
    matches = excluded.matches,
    status = excluded.status,
    started_at_ms = excluded.started_at_ms,
    finished_at_ms = excluded.finished_at_ms,
    wins_json = excluded.wins_json,
    summary_json = excluded.summary_json
`, batch.BatchID, batch.MasterSeed, batch.Matches, finishedStatus(batch.Status),
		batch.StartedAt.UTC().UnixMilli(), batch.FinishedAt.UTC().UnixMilli(),
		string(winsRaw), string(summaryRaw)); err != nil {
		return err
	}

	if s.recentLimit > 0 {
		if _, err := tx.ExecContext(ctx, `
DELETE FROM sim_batch
WHERE batch_id IN (
    SELECT batch_id
    FROM sim_batch
    ORDER BY finished_at_ms DESC, batch_id DESC
    LIMIT -1 OFFSET ?
)
`, s.recentLimit); err != nil {
			s.log.Warn("[Ledger] trim batches failed", zap.Error(err))
			return err
		}
		for _, stmt := range []string{
			`DELETE FROM sim_match_event WHERE batch_id NOT IN (SELECT batch_id FROM sim_batch)`,
			`DELETE FROM sim_match WHERE batch_id NOT IN (SELECT batch_id FROM sim_batch)`,
		} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				s.log.Warn("[Ledger] trim orphaned matches failed", zap.Error(err))
				return err
			}
		}
	}
	return tx.Commit()
}

func (s *SQLiteService) ListRecent(ctx context.Context, limit int) ([]BatchSummary, error) {
	limit = normalizeLimit(limit)
	rows, err := s.db.QueryContext(ctx, `
SELECT batch_id, master_seed, matches, status, started_at_ms, finished_at_ms, wins_json, summary_json
FROM sim_batch
ORDER BY finished_at_ms DESC, batch_id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]BatchSummary, 0, limit)
	for rows.Next() {
		var item BatchSummary
		var startedMs, finishedMs int64
		var winsRaw, summaryRaw string
		if err := rows.Scan(&item.BatchID, &item.MasterSeed, &item.Matches, &item.Status, &startedMs, &finishedMs, &winsRaw, &summaryRaw); err != nil {
			return nil, err
		}
		item.StartedAt = time.UnixMilli(startedMs).UTC()
		item.FinishedAt = time.UnixMilli(finishedMs).UTC()
		decodeBatchJSON(&item, []byte(winsRaw), []byte(summaryRaw))
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *SQLiteService) ListMatches(ctx context.Context, batchID string) ([]MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT match_index, seed, players_json, leaders_json, played_at_ms
FROM sim_match
WHERE batch_id = ?
ORDER BY match_index ASC
`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MatchRecord, 0, 64)
	for rows.Next() {
		rec := MatchRecord{BatchID: batchID}
		var playersRaw, leadersRaw string
		var playedMs int64
		if err := rows.Scan(&rec.Index, &rec.Seed, &playersRaw, &leadersRaw, &playedMs); err != nil {
			return nil, err
		}
		rec.PlayedAt = time.UnixMilli(playedMs).UTC()
		if err := json.Unmarshal([]byte(playersRaw), &rec.Players); err != nil {
			return nil, fmt.Errorf("decode players: %w", err)
		}
		if err := json.Unmarshal([]byte(leadersRaw), &rec.Leaders); err != nil {
			return nil, fmt.Errorf("decode leaders: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteService) GetMatchEvents(ctx context.Context, batchID string, index int) ([]EventItem, error) {
	if strings.TrimSpace(batchID) == "" {
		return nil, ErrNotFound
	}
	var exists int
	if err := s.db.QueryRowContext(ctx, `
SELECT 1 FROM sim_match WHERE batch_id = ? AND match_index = ?
`, batchID, index).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT seq, event_type, envelope_b64
FROM sim_match_event
WHERE batch_id = ?
  AND match_index = ?
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

func decodeBatchJSON(item *BatchSummary, winsRaw, summaryRaw []byte) {
	if len(winsRaw) > 0 {
		_ = json.Unmarshal(winsRaw, &item.Wins)
	}
	if item.Wins == nil {
		item.Wins = map[string]int{}
	}
	if len(summaryRaw) > 0 {
		_ = json.Unmarshal(summaryRaw, &item.Summary)
	}
	if item.Summary == nil {
		item.Summary = map[string]any{}
	}
}

func ensureSQLiteLedgerSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS sim_batch (
    batch_id TEXT PRIMARY KEY,
    master_seed INTEGER NOT NULL,
    matches INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'finished',
    started_at_ms INTEGER NOT NULL,
    finished_at_ms INTEGER NOT NULL,
    wins_json TEXT NOT NULL DEFAULT '{}',
    summary_json TEXT NOT NULL DEFAULT '{}'
)`,
		`CREATE INDEX IF NOT EXISTS idx_sim_batch_finished ON sim_batch(finished_at_ms DESC)`,
		`
CREATE TABLE IF NOT EXISTS sim_match (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    batch_id TEXT NOT NULL,
    match_index INTEGER NOT NULL,
    seed INTEGER NOT NULL,
    players_json TEXT NOT NULL DEFAULT '[]',
    leaders_json TEXT NOT NULL DEFAULT '[]',
    played_at_ms INTEGER NOT NULL,
    UNIQUE (batch_id, match_index)
)`,
		`
CREATE TABLE IF NOT EXISTS sim_match_event (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    batch_id TEXT NOT NULL,
    match_index INTEGER NOT NULL,
    seq INTEGER NOT NULL,
    event_type TEXT NOT NULL,
    envelope_b64 TEXT NOT NULL DEFAULT '',
    UNIQUE (batch_id, match_index, seq)
)`,
		`
CREATE TRIGGER IF NOT EXISTS trg_sim_batch_delete
AFTER DELETE ON sim_batch
BEGIN
    DELETE FROM sim_match_event WHERE batch_id = OLD.batch_id;
    DELETE FROM sim_match WHERE batch_id = OLD.batch_id;
END`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func defaultLocalDatabasePath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userConfigDir, "brewsim", defaultLocalDBName), nil
}
