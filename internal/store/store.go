package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sync"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/errs"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema
// 2 - UNIQUE index on carts(user_id, menu_id), merging duplicate lines first
const currentSchemaVersion = 2

// Store provides durable storage for the kantin entities.
// Uses SQLite with WAL mode for concurrent read access.
//
// The embedded Reader serves reads outside a transaction.
type Store struct {
	Reader

	db *sql.DB

	// wmu serializes writers so commit order and notification order agree.
	wmu sync.Mutex
	seq atomic.Int64

	obsMu     sync.RWMutex
	observers []observerEntry
	nextObsID int
}

type observerEntry struct {
	id int
	fn Observer
}

// Observer receives a Change after each committed write.
// It is called synchronously while the next writer waits, so it must not
// block and must not write to the store.
type Observer func(Change)

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
// ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, and an in-memory database
	// only exists on its own connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{Reader: Reader{q: db}, db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - writes through it bypass change notification.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Seq returns the sequence number of the latest committed write.
func (s *Store) Seq() int64 {
	return s.seq.Load()
}

// Observe registers fn to receive every future Change.
// The returned function removes the registration; it is safe to call twice.
func (s *Store) Observe(fn Observer) (cancel func()) {
	s.obsMu.Lock()
	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observerEntry{id: id, fn: fn})
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		for i, e := range s.observers {
			if e.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// Write runs fn inside a transaction.
//
// If fn returns an error the transaction rolls back and the error is returned
// unchanged. Otherwise the transaction commits and, when fn touched any table,
// observers receive the Change before Write returns.
func (s *Store) Write(ctx context.Context, fn func(tx *Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(errs.Cancelled, "store.write", err)
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(ctx, "store.begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	tx := &Tx{Reader: Reader{q: sqlTx}, tx: sqlTx, touched: make(map[Table]bool)}
	if err := fn(tx); err != nil {
		return cancelledIfDone(ctx, err)
	}
	if err := sqlTx.Commit(); err != nil {
		return classify(ctx, "store.commit", err)
	}
	committed = true

	if tables := tx.Touched(); len(tables) > 0 {
		s.publish(Change{Seq: s.seq.Add(1), Tables: tables})
	}
	return nil
}

func (s *Store) publish(ch Change) {
	s.obsMu.RLock()
	observers := make([]Observer, len(s.observers))
	for i, e := range s.observers {
		observers[i] = e.fn
	}
	s.obsMu.RUnlock()

	for _, fn := range observers {
		fn(ch)
	}
}

// cancelledIfDone reports a store failure caused by a cancelled context as
// Cancelled. Domain errors pass through untouched.
func cancelledIfDone(ctx context.Context, err error) error {
	if ctx.Err() != nil && errs.Is(err, errs.StoreFailure) {
		return &errs.Error{Code: errs.Cancelled, Op: "store.write", Err: err}
	}
	return err
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 2 {
		if err := migrateToV2(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV2 folds duplicate (user_id, menu_id) cart lines into the oldest
// line, summing quantities, then adds the unique index that keeps them merged.
func migrateToV2(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migrate to v2: %w", err)
	}
	defer tx.Rollback()

	steps := []string{
		`UPDATE carts SET quantity = (
			SELECT SUM(c2.quantity) FROM carts c2
			WHERE c2.user_id = carts.user_id AND c2.menu_id = carts.menu_id
		)
		WHERE id IN (
			SELECT MIN(id) FROM carts GROUP BY user_id, menu_id HAVING COUNT(*) > 1
		)`,
		`DELETE FROM carts WHERE id NOT IN (
			SELECT MIN(id) FROM carts GROUP BY user_id, menu_id
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_user_menu ON carts(user_id, menu_id)`,
	}
	for _, step := range steps {
		if _, err := tx.Exec(step); err != nil {
			return fmt.Errorf("migrate to v2: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate to v2: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
