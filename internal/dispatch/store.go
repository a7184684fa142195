package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/zen-figurl/internal/db"
	"github.com/ziadkadry99/zen-figurl/internal/siteuri"
)

// Store persists dispatch attempts.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Log inserts a record. If rec.ID is empty a UUID is generated; the stored
// record is returned.
func (s *Store) Log(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.KacheryZone = siteuri.NormalizeZone(rec.KacheryZone)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO site_dispatches (
			id, site_uri, kachery_zone, outcome, message, github_status, remote_addr, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.SiteURI,
		rec.KacheryZone,
		string(rec.Outcome),
		rec.Message,
		rec.GitHubStatus,
		rec.RemoteAddr,
		rec.CreatedAt.UTC().Format(time.DateTime),
	)
	if err != nil {
		return rec, fmt.Errorf("inserting dispatch record: %w", err)
	}
	return rec, nil
}

// List returns records matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.SiteURI != "" {
		clauses = append(clauses, "site_uri = ?")
		args = append(args, filter.SiteURI)
	}
	if filter.Outcome != "" {
		clauses = append(clauses, "outcome = ?")
		args = append(args, string(filter.Outcome))
	}

	query := "SELECT id, site_uri, kachery_zone, outcome, message, github_status, remote_addr, created_at FROM site_dispatches"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying dispatch records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r       Record
			outcome string
			ts      string
		)
		if err := rows.Scan(&r.ID, &r.SiteURI, &r.KacheryZone, &outcome, &r.Message, &r.GitHubStatus, &r.RemoteAddr, &ts); err != nil {
			return nil, fmt.Errorf("scanning dispatch record: %w", err)
		}
		r.Outcome = Outcome(outcome)
		if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
			r.CreatedAt = t
		} else if t, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
			r.CreatedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountSince returns how many records for siteURI with the given outcome
// were created at or after since.
func (s *Store) CountSince(ctx context.Context, siteURI string, outcome Outcome, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM site_dispatches WHERE site_uri = ? AND outcome = ? AND created_at >= ?",
		siteURI, string(outcome), since.UTC().Format(time.DateTime),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting dispatch records: %w", err)
	}
	return n, nil
}
