package kvstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	ledger "github.com/belisario-afk/cakepop-ledger"
	"github.com/google/go-cmp/cmp"
)

// testStores returns one fresh instance of every local store kind.
func testStores(t *testing.T) map[string]Store {
	t.Helper()
	tmp := t.TempDir()
	db, err := Open("sqlite:" + filepath.Join(tmp, "ledger.db"))
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	dir, err := Open(filepath.Join(tmp, "store"))
	if err != nil {
		t.Fatalf("Open(dir) error = %v", err)
	}
	return map[string]Store{"sqlite": db, "dir": dir}
}

func TestStore_Contract(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			const key = "smallbatch-ledger-v2::guest"

			if _, err := s.Get(key); !errors.Is(err, ledger.ErrNotFound) {
				t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
			}
			if err := s.Delete(key); err != nil {
				t.Fatalf("Delete(missing) error = %v", err)
			}

			if err := s.Set(key, []byte(`{"version":2}`)); err != nil {
				t.Fatal(err)
			}
			if err := s.Set(key, []byte(`{"version":3}`)); err != nil {
				t.Fatal(err)
			}
			got, err := s.Get(key)
			if err != nil || string(got) != `{"version":3}` {
				t.Errorf("Get() = %s, %v, want the last value", got, err)
			}

			if err := s.Set("cakepop-active-user", []byte(`{}`)); err != nil {
				t.Fatal(err)
			}
			keys, err := s.Keys()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff([]string{"cakepop-active-user", key}, keys); diff != "" {
				t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
			}

			if err := s.Delete(key); err != nil {
				t.Fatal(err)
			}
			if _, err := s.Get(key); !errors.Is(err, ledger.ErrNotFound) {
				t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_BacksALedger(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			store := ledger.NewStore(s, nil)
			if err := store.AddExpense(ledger.Expense{ID: "e1", Category: "rent", Amount: ledger.M(100)}); err != nil {
				t.Fatal(err)
			}
			d, err := ledger.NewStore(s, nil).Document()
			if err != nil {
				t.Fatal(err)
			}
			if len(d.Expenses) != 1 || d.Expenses[0].ID != "e1" {
				t.Errorf("expenses = %+v, want e1", d.Expenses)
			}
		})
	}
}

func TestDir_Layout(t *testing.T) {
	tmp := t.TempDir()
	d := NewDir(tmp)
	if err := d.Set("smallbatch-ledger-v2::guest", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "smallbatch-ledger-v2%3A%3Aguest.json" {
		t.Errorf("folder content = %v, want a single escaped json file", entries)
	}
}
