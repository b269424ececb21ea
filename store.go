package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicateID is returned when adding an entity whose id is already used in its collection.
var ErrDuplicateID = errors.New("duplicate id")

// errUnchanged lets a mutation report that there is nothing to persist.
var errUnchanged = errors.New("unchanged")

// Store owns the document of the active namespace.
//
// The namespace is derived from the identity provider on every access: when
// the active user changes, the cached document is dropped and the new
// namespace is loaded. Each mutation applies one change and persists the
// whole document before returning. There is no revision check, the last
// write wins.
//
// Failure policy: reads degrade, writes surface. A missing, unreadable or
// corrupt stored document is replaced by a fresh seeded one and never
// reported. Corrupt means not a JSON object: a field of the wrong kind is
// read leniently and the rest of the document kept. Every failed write is
// returned to the caller.
type Store struct {
	kv       KV
	identity IdentityProvider
	legacy   []LegacySource
	now      func() time.Time

	// Logger receives recoverable conditions. Defaults to log.Default().
	Logger *log.Logger

	mu  sync.Mutex
	ns  string    // namespace of doc
	doc *Document // nil until loaded
}

// NewStore returns a store persisted in kv. A nil identity always uses the guest namespace.
func NewStore(kv KV, identity IdentityProvider) *Store {
	return &Store{
		kv:       kv,
		identity: identity,
		legacy:   LegacySources,
		now:      time.Now,
	}
}

func (s *Store) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}

// Namespace returns the storage key of the active namespace.
func (s *Store) Namespace() string {
	if s.identity == nil {
		return NamespaceKey(nil)
	}
	return NamespaceKey(s.identity.ActiveUser())
}

// Invalidate drops the cached document. The next access reloads it from the KV.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc, s.ns = nil, ""
}

// Document returns the document of the active namespace, loading it if needed.
//
// The returned document is the live copy: it must not be retained across
// mutations. Use Snapshot for an independent copy.
func (s *Store) Document() (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document()
}

// Snapshot returns a deep copy of the active document.
func (s *Store) Snapshot() (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.document()
	if err != nil {
		return nil, err
	}
	return d.Clone()
}

// loadFailure classifies why no stored document could be used.
type loadFailure int

const (
	loadMissing loadFailure = iota
	loadUnreadable
	loadCorrupt
)

func (f loadFailure) String() string {
	switch f {
	case loadMissing:
		return "missing"
	case loadUnreadable:
		return "unreadable"
	case loadCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// loadError is the failure side of load. Every loadError leads to a fresh seeded document.
type loadError struct {
	key    string
	reason loadFailure
	raw    []byte // the payload, when corrupt
	err    error
}

func (e *loadError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("ledger %q is %v", e.key, e.reason)
	}
	return fmt.Sprintf("ledger %q is %v: %v", e.key, e.reason, e.err)
}

func (e *loadError) Unwrap() error { return e.err }

// load reads the document stored under ns, migrating a legacy one first if ns is empty.
func (s *Store) load(ns string) (*Document, *loadError) {
	raw, err := s.kv.Get(ns)
	if errors.Is(err, ErrNotFound) && s.migrate(ns) != "" {
		raw, err = s.kv.Get(ns)
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, &loadError{key: ns, reason: loadMissing}
	case err != nil:
		return nil, &loadError{key: ns, reason: loadUnreadable, err: err}
	}
	d, err := DecodeDocument(raw)
	if err != nil {
		return nil, &loadError{key: ns, reason: loadCorrupt, raw: raw, err: err}
	}
	return d, nil
}

// document implements Document, s.mu must be held.
func (s *Store) document() (*Document, error) {
	ns := s.Namespace()
	if s.doc != nil && s.ns == ns {
		return s.doc, nil
	}
	s.doc, s.ns = nil, ""

	d, lerr := s.load(ns)
	if lerr == nil {
		s.doc, s.ns = d, ns
		return d, nil
	}

	if lerr.reason != loadMissing {
		s.logger().Printf("storage load error, starting a fresh ledger: %v", lerr)
	}
	if lerr.reason == loadCorrupt {
		// Keep the unreadable payload aside before it is overwritten.
		key := fmt.Sprintf("%s::corrupt::%d", ns, MillisOf(s.now()))
		if err := s.kv.Set(key, lerr.raw); err != nil {
			s.logger().Printf("cannot preserve corrupt ledger %q: %v", ns, err)
		}
	}
	d = NewDocument(s.now())
	seed(d)
	s.doc, s.ns = d, ns
	if err := s.persist(); err != nil {
		s.doc, s.ns = nil, ""
		return nil, err
	}
	return d, nil
}

// Persist stamps the document as saved and writes it to its namespace.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil
	}
	return s.persist()
}

// persist implements Persist, s.mu must be held and s.doc set.
func (s *Store) persist() error {
	saved := MillisOf(s.now())
	s.doc.Meta.LastSaved = &saved
	data, err := json.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("cannot encode ledger %q: %w", s.ns, err)
	}
	if err := s.kv.Set(s.ns, data); err != nil {
		return fmt.Errorf("cannot persist ledger %q: %w", s.ns, err)
	}
	return nil
}

// mutate applies f to the active document and persists it. The change is
// rolled back when it cannot be written.
func (s *Store) mutate(f func(d *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.document()
	if err != nil {
		return err
	}
	prev, err := d.Clone()
	if err != nil {
		return err
	}
	if err := f(d); err != nil {
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}
	if err := s.persist(); err != nil {
		s.doc = prev
		return err
	}
	return nil
}

// newID returns a fresh id with the given prefix.
func newID(prefix string) string { return prefix + uuid.NewString() }

// AddProduct appends p to the catalog. An empty id is generated.
func (s *Store) AddProduct(p Product) error {
	return s.mutate(func(d *Document) error {
		if p.ID == "" {
			p.ID = newID("p-")
		}
		if findProduct(d.Products, p.ID) != nil {
			return fmt.Errorf("cannot add product %q: %w", p.ID, ErrDuplicateID)
		}
		d.Products = append(d.Products, p)
		return nil
	})
}

// RemoveProduct removes a product and its recipe. Sales referencing it are kept as they are.
func (s *Store) RemoveProduct(id string) error {
	return s.mutate(func(d *Document) error {
		d.Products = slices.DeleteFunc(d.Products, func(p Product) bool { return p.ID == id })
		delete(d.Recipes, id)
		return nil
	})
}

// AddIngredient appends i to the catalog. An empty id is generated.
func (s *Store) AddIngredient(i Ingredient) error {
	return s.mutate(func(d *Document) error {
		if i.ID == "" {
			i.ID = newID("ing-")
		}
		if findIngredient(d.Ingredients, i.ID) != nil {
			return fmt.Errorf("cannot add ingredient %q: %w", i.ID, ErrDuplicateID)
		}
		d.Ingredients = append(d.Ingredients, i)
		return nil
	})
}

// RemoveIngredient removes an ingredient and every recipe line using it.
func (s *Store) RemoveIngredient(id string) error {
	return s.mutate(func(d *Document) error {
		d.Ingredients = slices.DeleteFunc(d.Ingredients, func(i Ingredient) bool { return i.ID == id })
		for _, line := range d.Recipes {
			delete(line, id)
		}
		return nil
	})
}

// UpsertRecipeLine sets the quantity of an ingredient in a product recipe, creating the recipe if needed.
func (s *Store) UpsertRecipeLine(productID, ingredientID string, qty Quantity) error {
	return s.mutate(func(d *Document) error {
		if d.Recipes[productID] == nil {
			d.Recipes[productID] = RecipeLine{}
		}
		d.Recipes[productID][ingredientID] = qty
		return nil
	})
}

// RemoveRecipeLine removes an ingredient from a product recipe.
//
// The recipe itself stays defined, even when empty.
func (s *Store) RemoveRecipeLine(productID, ingredientID string) error {
	return s.mutate(func(d *Document) error {
		line, ok := d.Recipes[productID]
		if !ok {
			return errUnchanged
		}
		delete(line, ingredientID)
		return nil
	})
}

// AddSale appends a sale. An empty id is generated.
func (s *Store) AddSale(sale Sale) error {
	return s.mutate(func(d *Document) error {
		if sale.ID == "" {
			sale.ID = newID("s-")
		}
		if slices.ContainsFunc(d.Sales, func(x Sale) bool { return x.ID == sale.ID }) {
			return fmt.Errorf("cannot add sale %q: %w", sale.ID, ErrDuplicateID)
		}
		d.Sales = append(d.Sales, sale)
		return nil
	})
}

// RemoveSale removes a sale.
func (s *Store) RemoveSale(id string) error {
	return s.mutate(func(d *Document) error {
		d.Sales = slices.DeleteFunc(d.Sales, func(x Sale) bool { return x.ID == id })
		return nil
	})
}

// AddExpense appends an expense. An empty id is generated.
func (s *Store) AddExpense(e Expense) error {
	return s.mutate(func(d *Document) error {
		if e.ID == "" {
			e.ID = newID("e-")
		}
		if slices.ContainsFunc(d.Expenses, func(x Expense) bool { return x.ID == e.ID }) {
			return fmt.Errorf("cannot add expense %q: %w", e.ID, ErrDuplicateID)
		}
		d.Expenses = append(d.Expenses, e)
		return nil
	})
}

// RemoveExpense removes an expense.
func (s *Store) RemoveExpense(id string) error {
	return s.mutate(func(d *Document) error {
		d.Expenses = slices.DeleteFunc(d.Expenses, func(x Expense) bool { return x.ID == id })
		return nil
	})
}

// SaveSettings replaces the opaque settings blob.
func (s *Store) SaveSettings(settings json.RawMessage) error {
	return s.mutate(func(d *Document) error {
		d.Settings = slices.Clone(settings)
		return nil
	})
}

// MarkExported stamps the document as exported now.
func (s *Store) MarkExported() error {
	return s.mutate(func(d *Document) error {
		at := MillisOf(s.now())
		d.Meta.LastExport = &at
		return nil
	})
}

// ResetAll replaces the active document with a fresh seeded one.
func (s *Store) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := NewDocument(s.now())
	seed(d)
	return s.replace(d)
}

// ImportDocument replaces the active document with a JSON snapshot.
//
// The snapshot gets the same backfill as a stored document. It must be a
// JSON object, its field values are read leniently.
func (s *Store) ImportDocument(data []byte) error {
	d, err := DecodeDocument(data)
	if err != nil {
		return fmt.Errorf("cannot import ledger: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replace(d)
}

// replace installs d as the active document and persists it. The previous
// document stays active if d cannot be written. s.mu must be held.
func (s *Store) replace(d *Document) error {
	prevDoc, prevNS := s.doc, s.ns
	s.doc, s.ns = d, s.Namespace()
	if err := s.persist(); err != nil {
		s.doc, s.ns = prevDoc, prevNS
		return err
	}
	return nil
}

// ExportSnapshot returns the active document as indented JSON.
func (s *Store) ExportSnapshot() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.document()
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("cannot encode snapshot: %w", err)
	}
	return string(data), nil
}
