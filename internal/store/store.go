// Package store persists generated breakdowns in SQLite so they can be
// listed per plan and fetched again by ID.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ordinex/ordinex/internal/detect"
	"github.com/ordinex/ordinex/internal/errors"
	"github.com/ordinex/ordinex/internal/mission"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// Record is a stored breakdown with the detection it was generated from.
type Record struct {
	Breakdown *mission.Breakdown `json:"breakdown"`
	Detection detect.Result      `json:"detection"`
	Forced    bool               `json:"forced"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Summary is one row of a plan's breakdown history.
type Summary struct {
	BreakdownID  string    `json:"breakdownId"`
	PlanID       string    `json:"planId"`
	PlanVersion  int       `json:"planVersion"`
	MissionCount int       `json:"missionCount"`
	StepCount    int       `json:"stepCount"`
	LargePlan    bool      `json:"largePlan"`
	Score        int       `json:"score"`
	Forced       bool      `json:"forced"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Store is a SQLite-backed breakdown history. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreOpen, "create data directory", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreOpen, fmt.Sprintf("open database %s", path), err)
	}
	if path == MemoryPath {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(errors.ErrCodeStoreOpen, fmt.Sprintf("pragma %q", p), err)
		}
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrCodeStoreOpen, "migrate schema", err)
	}

	return s, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS breakdowns (
			breakdown_id   TEXT PRIMARY KEY,
			plan_id        TEXT NOT NULL,
			plan_version   INTEGER NOT NULL,
			goal           TEXT NOT NULL,
			mission_count  INTEGER NOT NULL,
			step_count     INTEGER NOT NULL,
			large_plan     INTEGER NOT NULL,
			score          INTEGER NOT NULL,
			forced         INTEGER NOT NULL DEFAULT 0,
			breakdown_json TEXT NOT NULL,
			detection_json TEXT NOT NULL,
			created_at     TEXT NOT NULL,
			updated_at     TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_breakdowns_plan
			ON breakdowns(plan_id, plan_version);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save stores a breakdown. Saving the same breakdown ID again replaces
// the stored content and keeps the original creation time.
func (s *Store) Save(ctx context.Context, b *mission.Breakdown, d detect.Result, forced bool) error {
	bJSON, err := json.Marshal(b)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreQuery, "encode breakdown", err)
	}
	dJSON, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreQuery, "encode detection", err)
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO breakdowns (
			breakdown_id, plan_id, plan_version, goal, mission_count, step_count,
			large_plan, score, forced, breakdown_json, detection_json, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(breakdown_id) DO UPDATE SET
			goal           = excluded.goal,
			mission_count  = excluded.mission_count,
			large_plan     = excluded.large_plan,
			score          = excluded.score,
			forced         = excluded.forced,
			breakdown_json = excluded.breakdown_json,
			detection_json = excluded.detection_json,
			updated_at     = excluded.updated_at`,
		b.BreakdownID, b.PlanID, b.PlanVersion, b.Goal, len(b.Missions), b.StepCount(),
		d.LargePlan, d.Score, forced, string(bJSON), string(dJSON), now, now,
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreQuery, fmt.Sprintf("save breakdown %s", b.BreakdownID), err)
	}
	return nil
}

// Get returns the breakdown stored under id, or MISSION-003 when absent.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT breakdown_json, detection_json, forced, created_at, updated_at
		FROM breakdowns WHERE breakdown_id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewBreakdownNotFoundError(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, fmt.Sprintf("get breakdown %s", id), err)
	}
	return rec, nil
}

// Latest returns the most recently updated breakdown of the plan's
// highest stored version.
func (s *Store) Latest(ctx context.Context, planID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT breakdown_json, detection_json, forced, created_at, updated_at
		FROM breakdowns WHERE plan_id = ?
		ORDER BY plan_version DESC, updated_at DESC
		LIMIT 1`, planID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.New(errors.ErrCodePlanNotFound, fmt.Sprintf("no breakdowns stored for plan %s", planID))
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, fmt.Sprintf("latest breakdown for %s", planID), err)
	}
	return rec, nil
}

// ListByPlan returns the plan's breakdown history, newest version first.
// A plan with no history yields an empty list.
func (s *Store) ListByPlan(ctx context.Context, planID string) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT breakdown_id, plan_id, plan_version, mission_count, step_count,
		       large_plan, score, forced, updated_at
		FROM breakdowns WHERE plan_id = ?
		ORDER BY plan_version DESC, updated_at DESC, breakdown_id`, planID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, fmt.Sprintf("list breakdowns for %s", planID), err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var (
			sum     Summary
			updated string
		)
		if err := rows.Scan(&sum.BreakdownID, &sum.PlanID, &sum.PlanVersion, &sum.MissionCount,
			&sum.StepCount, &sum.LargePlan, &sum.Score, &sum.Forced, &updated); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreQuery, "scan breakdown summary", err)
		}
		if sum.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreQuery, "parse updated_at", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, "iterate breakdowns", err)
	}
	return summaries, nil
}

func scanRecord(row *sql.Row) (*Record, error) {
	var (
		bJSON, dJSON     string
		created, updated string
		rec              Record
	)
	if err := row.Scan(&bJSON, &dJSON, &rec.Forced, &created, &updated); err != nil {
		return nil, err
	}

	rec.Breakdown = &mission.Breakdown{}
	if err := json.Unmarshal([]byte(bJSON), rec.Breakdown); err != nil {
		return nil, fmt.Errorf("decode breakdown: %w", err)
	}
	if err := json.Unmarshal([]byte(dJSON), &rec.Detection); err != nil {
		return nil, fmt.Errorf("decode detection: %w", err)
	}

	var err error
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &rec, nil
}
