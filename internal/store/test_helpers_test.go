package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fixture ids created by seedFixture.
type fixture struct {
	user, otherUser int64
	tenant          int64
	gudeg, soto     int64
}

// seedFixture inserts two users, one tenant and two menus.
func seedFixture(t *testing.T, s *Store) fixture {
	t.Helper()
	var f fixture
	err := s.Write(context.Background(), func(tx *Tx) error {
		var err error
		if f.user, err = tx.InsertUser(context.Background(), model.User{Username: "andin", Email: "andin@example.com", Password: "x"}); err != nil {
			return err
		}
		if f.otherUser, err = tx.InsertUser(context.Background(), model.User{Username: "budi", Email: "budi@example.com", Password: "x"}); err != nil {
			return err
		}
		if f.tenant, err = tx.InsertTenant(context.Background(), model.Tenant{Name: "Warung Bu Sari", Location: "Lantai 1"}); err != nil {
			return err
		}
		if f.gudeg, err = tx.InsertMenu(context.Background(), model.Menu{TenantID: f.tenant, Name: "Nasi Gudeg", Price: decimal.RequireFromString("15000"), Category: "Makanan Utama"}); err != nil {
			return err
		}
		f.soto, err = tx.InsertMenu(context.Background(), model.Menu{TenantID: f.tenant, Name: "Soto Ayam", Price: decimal.RequireFromString("12000"), Category: "Makanan Utama"})
		return err
	})
	if err != nil {
		t.Fatalf("seed fixture: %v", err)
	}
	return f
}

// mustWrite runs fn in a write transaction and fails the test on error.
func mustWrite(t *testing.T, s *Store, fn func(tx *Tx) error) {
	t.Helper()
	if err := s.Write(context.Background(), fn); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
}

// countRows counts rows in a table directly.
func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
