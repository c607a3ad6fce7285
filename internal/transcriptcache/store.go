package transcriptcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"subburn/internal/config"
	"subburn/internal/transcript"
)

// Store manages transcript persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Entry is one cached transcript.
type Entry struct {
	SourceKey    string
	Provider     string
	TranscriptID string
	Utterances   []transcript.Utterance
	CreatedAt    time.Time
	AccessedAt   time.Time
}

// WordCount returns the total number of timed words across utterances.
func (e *Entry) WordCount() int {
	if e == nil {
		return 0
	}
	total := 0
	for _, u := range e.Utterances {
		total += len(u.Words)
	}
	return total
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries int
	Words   int64
	Oldest  time.Time
	Newest  time.Time
}

// timeLayout is fixed-width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000Z"

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open creates the state directory if needed and opens the cache database
// at cfg.TranscriptCachePath().
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.TranscriptCachePath())
}

// OpenPath opens or creates a cache database at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put inserts or replaces the entry for e.SourceKey.
func (s *Store) Put(ctx context.Context, e Entry) error {
	key := strings.TrimSpace(e.SourceKey)
	if key == "" {
		return errors.New("source key is required")
	}
	if strings.TrimSpace(e.TranscriptID) == "" {
		return errors.New("transcript id is required")
	}
	payload, err := json.Marshal(e.Utterances)
	if err != nil {
		return fmt.Errorf("marshal utterances: %w", err)
	}
	ts := s.now().UTC().Format(timeLayout)
	_, err = s.exec(ctx,
		`INSERT INTO transcripts (source_key, provider, transcript_id, utterances_json, word_count, created_at, accessed_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(source_key) DO UPDATE SET
             provider = excluded.provider,
             transcript_id = excluded.transcript_id,
             utterances_json = excluded.utterances_json,
             word_count = excluded.word_count,
             created_at = excluded.created_at,
             accessed_at = excluded.accessed_at`,
		key, e.Provider, e.TranscriptID, string(payload), e.WordCount(), ts, ts,
	)
	if err != nil {
		return fmt.Errorf("put transcript: %w", err)
	}
	return nil
}

// Get returns the entry for key, or nil when nothing is cached. A hit
// refreshes the entry's access time.
func (s *Store) Get(ctx context.Context, key string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT source_key, provider, transcript_id, utterances_json, created_at, accessed_at
         FROM transcripts WHERE source_key = ?`,
		strings.TrimSpace(key),
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}

	now := s.now().UTC()
	if _, err := s.exec(ctx, `UPDATE transcripts SET accessed_at = ? WHERE source_key = ?`,
		now.Format(timeLayout), entry.SourceKey); err != nil {
		return nil, fmt.Errorf("touch transcript: %w", err)
	}
	entry.AccessedAt = now
	return entry, nil
}

// FindByTranscriptID returns the most recently stored entry with the given
// provider transcript ID, or nil.
func (s *Store) FindByTranscriptID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT source_key, provider, transcript_id, utterances_json, created_at, accessed_at
         FROM transcripts WHERE transcript_id = ? ORDER BY created_at DESC LIMIT 1`,
		strings.TrimSpace(id),
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find transcript: %w", err)
	}
	return entry, nil
}

// Delete removes the entry for key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.exec(ctx, `DELETE FROM transcripts WHERE source_key = ?`, strings.TrimSpace(key)); err != nil {
		return fmt.Errorf("delete transcript: %w", err)
	}
	return nil
}

// Prune removes entries not accessed within maxAge and returns how many were
// deleted.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-maxAge).Format(timeLayout)
	res, err := s.exec(ctx, `DELETE FROM transcripts WHERE accessed_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune transcripts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Stats reports the number of cached transcripts and their word total.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		stats          Stats
		oldest, newest sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(word_count), 0), MIN(created_at), MAX(created_at) FROM transcripts`,
	).Scan(&stats.Entries, &stats.Words, &oldest, &newest)
	if err != nil {
		return Stats{}, fmt.Errorf("transcript stats: %w", err)
	}
	stats.Oldest = parseTime(oldest.String)
	stats.Newest = parseTime(newest.String)
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry            Entry
		payload          string
		created, touched string
	)
	if err := row.Scan(&entry.SourceKey, &entry.Provider, &entry.TranscriptID, &payload, &created, &touched); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &entry.Utterances); err != nil {
		return nil, fmt.Errorf("decode utterances for %s: %w", entry.SourceKey, err)
	}
	entry.CreatedAt = parseTime(created)
	entry.AccessedAt = parseTime(touched)
	return &entry, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
