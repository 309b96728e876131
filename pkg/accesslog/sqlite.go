package accesslog

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// SQLite appends records to an access_log table.
type SQLite struct {
	db         *sql.DB
	writeMutex sync.Mutex
	log        zerolog.Logger
}

// OpenSQLite opens (or creates) the database at filename.
func OpenSQLite(filename string, log zerolog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, errors.Wrap(err, "open access log db")
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS access_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			time INTEGER,
			client TEXT,
			method TEXT,
			uri TEXT,
			outcome TEXT,
			status INTEGER,
			bytes INTEGER
		)`,
		"CREATE INDEX IF NOT EXISTS access_log_time_idx ON access_log (time)",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "init access log db")
		}
	}
	return &SQLite{db: db, log: log}, nil
}

// Record inserts r. Failures are logged and otherwise ignored.
func (s *SQLite) Record(r Record) {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	_, err := s.db.Exec(`INSERT INTO access_log
		(time, client, method, uri, outcome, status, bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Time.UnixNano(), r.Client, r.Method, r.URI, string(r.Outcome), r.Status, r.Bytes)
	if err != nil {
		s.log.Error().Err(err).Str("uri", r.URI).Msg("write access log")
	}
}

// Recent returns up to limit records, newest first.
func (s *SQLite) Recent(limit int) ([]Record, error) {
	rows, err := s.db.Query(`SELECT time, client, method, uri, outcome, status, bytes
		FROM access_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query access log")
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var r Record
		var ts int64
		var outcome string
		if err := rows.Scan(&ts, &r.Client, &r.Method, &r.URI, &outcome, &r.Status, &r.Bytes); err != nil {
			return out, errors.Wrap(err, "scan access log")
		}
		r.Time = time.Unix(0, ts)
		r.Outcome = Outcome(outcome)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
