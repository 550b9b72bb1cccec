// Package planstore keeps an audit trail of every transfer plan that
// was actually submitted upstream.
package planstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"fplassist-backend/lib/planner"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// Record is one submitted plan as it went over the wire.
type Record struct {
	Entry       int64
	Event       int
	SubmittedAt time.Time
	Transfers   []planner.Transfer
}

func (s Store) Push(ctx context.Context, at time.Time, plan planner.Plan) error {
	transfers, err := json.Marshal(plan.Transfers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO submitted_plan (entry, event, submitted_at, transfers)
		 VALUES (?, ?, ?, ?)`,
		plan.Entry, plan.Event, at.Unix(), string(transfers),
	)
	return err
}

// Pull returns every plan submitted for an entry, oldest first.
func (s Store) Pull(ctx context.Context, entry int64) ([]Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT entry, event, submitted_at, transfers
		 FROM submitted_plan
		 WHERE entry = ?
		 ORDER BY submitted_at ASC, id ASC`,
		entry,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var record Record
		var submittedAt int64
		var transfers string
		err := rows.Scan(&record.Entry, &record.Event, &submittedAt, &transfers)
		if err != nil {
			return nil, err
		}
		record.SubmittedAt = time.Unix(submittedAt, 0)
		err = json.Unmarshal([]byte(transfers), &record.Transfers)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
