// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/telekom/horizon/internal/logger"
	"github.com/telekom/horizon/pkg/checks"
	_ "modernc.org/sqlite"
)

var _ DB = (*History)(nil)

// saveTimeout bounds writing one result.
const saveTimeout = 10 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS searches (
    id TEXT PRIMARY KEY,
    check_name TEXT NOT NULL,
    target TEXT NOT NULL,
    timestamp INTEGER NOT NULL,
    data TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_searches_target_timestamp ON searches(target, timestamp);
CREATE INDEX IF NOT EXISTS idx_searches_timestamp ON searches(timestamp);
`

// Config configures the search history. An empty path disables it.
type Config struct {
	// Path is the sqlite database file
	Path string `yaml:"path" mapstructure:"path"`
	// Retention is how long searches are kept. Zero keeps them forever.
	Retention time.Duration `yaml:"retention" mapstructure:"retention"`
}

// Enabled returns true if a database file is configured
func (c *Config) Enabled() bool {
	return c.Path != ""
}

func (c *Config) Validate() error {
	if c.Retention < 0 {
		return fmt.Errorf("invalid history retention %v: must not be negative", c.Retention)
	}
	return nil
}

// Search is one stored search of a target.
type Search struct {
	ID        uuid.UUID       `json:"id"`
	Check     string          `json:"check"`
	Target    string          `json:"target"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// History keeps the latest results in memory and appends every search of a
// target to a sqlite database.
type History struct {
	*InMemory
	db        *sql.DB
	retention time.Duration
	log       *slog.Logger
	now       func() time.Time
}

// NewHistory opens or creates the database at the configured path.
func NewHistory(ctx context.Context, cfg Config) (*History, error) {
	log := logger.FromContext(ctx)
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// sqlite has a single writer, one connection also keeps in-memory databases alive
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			log.WarnContext(ctx, "Failed to set pragma", "pragma", pragma, "error", err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create history schema: %w", err), db.Close())
	}

	log.InfoContext(ctx, "Search history opened", "path", cfg.Path, "retention", cfg.Retention.String())
	return &History{
		InMemory:  NewInMemory(),
		db:        db,
		retention: cfg.Retention,
		log:       log,
		now:       time.Now,
	}, nil
}

// Save stores the latest result and appends one row per target of it.
// Write failures are logged, the latest result is kept regardless.
func (h *History) Save(result checks.ResultDTO) {
	h.InMemory.Save(result)
	if result.Result == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := h.append(ctx, result.Name, result.Result); err != nil {
		h.log.ErrorContext(ctx, "Failed to append search history", "check", result.Name, "error", err)
	}
	if h.retention > 0 {
		if _, err := h.Prune(ctx, h.now().Add(-h.retention)); err != nil {
			h.log.ErrorContext(ctx, "Failed to prune search history", "error", err)
		}
	}
}

func (h *History) append(ctx context.Context, check string, result *checks.Result) (err error) {
	rows, err := splitTargets(result.Data)
	if err != nil {
		return err
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	const query = `INSERT INTO searches (id, check_name, target, timestamp, data) VALUES (?, ?, ?, ?, ?)`
	for target, data := range rows {
		id := searchID(data)
		if _, err = tx.ExecContext(ctx, query, id.String(), check, target, result.Timestamp.UnixMilli(), string(data)); err != nil {
			return fmt.Errorf("failed to insert search of %q: %w", target, err)
		}
	}
	return tx.Commit()
}

// Searches returns the latest searches of target, newest first.
func (h *History) Searches(ctx context.Context, target string, limit int) ([]Search, error) {
	const query = `
        SELECT id, check_name, target, timestamp, data
        FROM searches
        WHERE target = ?
        ORDER BY timestamp DESC, id DESC
        LIMIT ?
    `
	rows, err := h.db.QueryContext(ctx, query, target, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query searches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	searches := []Search{}
	for rows.Next() {
		var (
			s    Search
			id   string
			ts   int64
			data string
		)
		if err := rows.Scan(&id, &s.Check, &s.Target, &ts, &data); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid search id %q: %w", id, err)
		}
		s.Timestamp = time.UnixMilli(ts).UTC()
		s.Data = json.RawMessage(data)
		searches = append(searches, s)
	}
	return searches, rows.Err()
}

// Prune deletes all searches older than before and returns how many were deleted.
func (h *History) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := h.db.ExecContext(ctx, `DELETE FROM searches WHERE timestamp < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune searches: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}

// splitTargets splits check data keyed by target into one json document per target.
func splitTargets(data any) (map[string]json.RawMessage, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result data: %w", err)
	}
	var rows map[string]json.RawMessage
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("result data is not keyed by target: %w", err)
	}
	return rows, nil
}

// searchID returns the id carried by the search, or a new one if it has none.
func searchID(data json.RawMessage) uuid.UUID {
	var s struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(data, &s) == nil {
		if id, err := uuid.Parse(s.ID); err == nil {
			return id
		}
	}
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
