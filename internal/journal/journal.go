package journal

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"attentiond/internal/domain"
)

// Store journals pipeline outcomes for operator audit. It records derived
// decisions only, never the raw ingested payload.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS pipeline_outcomes (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id           TEXT NOT NULL,
		source             TEXT NOT NULL,
		kind               TEXT NOT NULL,
		outcome            TEXT NOT NULL,
		urgency_score      REAL NOT NULL,
		threshold          REAL NOT NULL,
		rule_id            TEXT DEFAULT '',
		classifier_version TEXT DEFAULT '',
		directive_version  TEXT DEFAULT '',
		notified           INTEGER DEFAULT 0,
		channel_results    TEXT DEFAULT '',
		created_at         DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_po_created_at ON pipeline_outcomes(created_at);
	CREATE INDEX IF NOT EXISTS idx_po_source ON pipeline_outcomes(source, kind);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// sqlTime renders a time for comparison against created_at. Rows carry UTC
// CURRENT_TIMESTAMP strings and SQLite compares strings lexicographically,
// so bound parameters must be UTC in the same layout or the window shifts
// by the local offset.
func sqlTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// Record is one journal row.
type Record struct {
	ID                int64
	EventID           string
	Source            string
	Kind              string
	Outcome           string
	UrgencyScore      float64
	Threshold         float64
	RuleID            string
	ClassifierVersion string
	DirectiveVersion  string
	Notified          bool
	ChannelResults    string
	CreatedAt         time.Time
}

// FromResult flattens a pipeline result into a journal record.
func FromResult(res domain.PipelineResult) Record {
	rec := Record{
		EventID:           res.Event.ID,
		Source:            res.Event.Source,
		Kind:              res.Event.Kind,
		Outcome:           res.Outcome,
		UrgencyScore:      res.Classification.UrgencyScore,
		Threshold:         res.Decision.Threshold,
		RuleID:            res.Decision.RuleID,
		ClassifierVersion: res.Classification.Version,
	}
	if res.Directive != nil {
		rec.DirectiveVersion = res.Directive.Version
		rec.Notified = res.Directive.ShouldNotify
	}
	if len(res.DispatchResults) > 0 {
		parts := make([]string, 0, len(res.DispatchResults))
		for _, r := range res.DispatchResults {
			status := "ok"
			if !r.OK {
				status = "failed"
			}
			parts = append(parts, r.Channel+"="+status)
		}
		rec.ChannelResults = strings.Join(parts, ",")
	}
	return rec
}

func (s *Store) Insert(rec Record) error {
	_, err := s.db.Exec(
		`INSERT INTO pipeline_outcomes
		 (event_id, source, kind, outcome, urgency_score, threshold, rule_id, classifier_version, directive_version, notified, channel_results)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.EventID, rec.Source, rec.Kind, rec.Outcome, rec.UrgencyScore, rec.Threshold,
		rec.RuleID, rec.ClassifierVersion, rec.DirectiveVersion, rec.Notified, rec.ChannelResults,
	)
	return err
}

func (s *Store) Recent(limit int) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT id, event_id, source, kind, outcome, urgency_score, threshold, rule_id,
		        classifier_version, directive_version, notified, channel_results, created_at
		 FROM pipeline_outcomes
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.ID, &r.EventID, &r.Source, &r.Kind, &r.Outcome, &r.UrgencyScore, &r.Threshold,
			&r.RuleID, &r.ClassifierVersion, &r.DirectiveVersion, &r.Notified, &r.ChannelResults, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) OutcomeCounts(since time.Time) (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT outcome, COUNT(*) FROM pipeline_outcomes
		 WHERE created_at >= ? GROUP BY outcome`,
		sqlTime(since),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

// FallbackStats summarizes how often the deterministic fallbacks produced
// the recorded results. Silent fallback is deliberate; this is how operators
// see it happening.
type FallbackStats struct {
	Total               int
	FallbackClassified  int
	FallbackDirectives  int
	AvgUrgencyScore     float64
}

func (s *Store) GetFallbackStats(since time.Time) (FallbackStats, error) {
	var st FallbackStats
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN classifier_version = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN directive_version = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(AVG(urgency_score), 0)
		 FROM pipeline_outcomes WHERE created_at >= ?`,
		domain.VersionFallbackHeuristic, domain.VersionFallbackHeuristic, sqlTime(since),
	).Scan(&st.Total, &st.FallbackClassified, &st.FallbackDirectives, &st.AvgUrgencyScore)
	return st, err
}

// DeleteOlderThan removes journal rows created before the cutoff and
// returns the number deleted.
func (s *Store) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM pipeline_outcomes WHERE created_at < ?`, sqlTime(cutoff))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
