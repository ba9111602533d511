// Package mapstore persists the old-identifier to new-identifier translation
// tables, one per entity kind. It is the sole source of truth for "already
// migrated": a record whose old ID appears in its table is never re-created.
package mapstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"encoding/json/v2"
)

// DefaultFile is the mapping file name within the data directory.
const DefaultFile = "id_map.json"

// DefaultPath returns the mapping file path under dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, DefaultFile)
}

// Kind identifies one of the four mapping tables.
type Kind string

// Entity kinds, in dependency order.
const (
	KindProducts      Kind = "products"
	KindPrices        Kind = "prices"
	KindCustomers     Kind = "customers"
	KindSubscriptions Kind = "subscriptions"
)

// Kinds returns the entity kinds in dependency order:
// prices reference products; subscriptions reference customers and prices.
func Kinds() []Kind {
	return []Kind{KindProducts, KindPrices, KindCustomers, KindSubscriptions}
}

// Map holds the four flat old-ID to new-ID tables. The JSON shape is part of
// the tool's external contract and must stay a single document with these
// four top-level objects.
type Map struct {
	Customers     map[string]string `json:"customers"`
	Products      map[string]string `json:"products"`
	Prices        map[string]string `json:"prices"`
	Subscriptions map[string]string `json:"subscriptions"`
}

// NewMap creates an empty map with all four tables initialized.
func NewMap() *Map {
	return &Map{
		Customers:     make(map[string]string),
		Products:      make(map[string]string),
		Prices:        make(map[string]string),
		Subscriptions: make(map[string]string),
	}
}

// table returns the table for a kind, initializing it if the loaded file
// omitted it.
func (m *Map) table(kind Kind) map[string]string {
	switch kind {
	case KindProducts:
		if m.Products == nil {
			m.Products = make(map[string]string)
		}
		return m.Products
	case KindPrices:
		if m.Prices == nil {
			m.Prices = make(map[string]string)
		}
		return m.Prices
	case KindCustomers:
		if m.Customers == nil {
			m.Customers = make(map[string]string)
		}
		return m.Customers
	case KindSubscriptions:
		if m.Subscriptions == nil {
			m.Subscriptions = make(map[string]string)
		}
		return m.Subscriptions
	default:
		panic(fmt.Sprintf("unknown entity kind %q", kind))
	}
}

// Get returns the new ID mapped to oldID, if any.
func (m *Map) Get(kind Kind, oldID string) (string, bool) {
	newID, ok := m.table(kind)[oldID]
	return newID, ok
}

// Set records oldID -> newID. The first write wins: an existing entry is
// never overwritten, so re-running a completed stage is a no-op.
func (m *Map) Set(kind Kind, oldID, newID string) bool {
	t := m.table(kind)
	if _, exists := t[oldID]; exists {
		return false
	}
	t[oldID] = newID
	return true
}

// Count returns the number of entries for a kind.
func (m *Map) Count(kind Kind) int {
	return len(m.table(kind))
}

// Entries returns a copy of one kind's table.
func (m *Map) Entries(kind Kind) map[string]string {
	t := m.table(kind)
	out := make(map[string]string, len(t))
	for oldID, newID := range t {
		out[oldID] = newID
	}
	return out
}

// Store loads and saves the mapping file. No locking: the migration runs
// single-process, and concurrent runs against the same store are undefined
// behavior.
type Store struct {
	path   string
	logger *slog.Logger
}

// New creates a Store persisting to the given file path.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the mapping file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted map, or returns an empty one when the file does
// not exist yet. Any other read or parse error is fatal: migrating against a
// half-read map would re-create entities.
func (s *Store) Load() (*Map, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		s.logger.Info("no mapping file yet, starting empty", "path", s.path)
		return NewMap(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open mapping file: %w", err)
	}
	defer f.Close()

	m := NewMap()
	if err := json.UnmarshalRead(f, m); err != nil {
		return nil, fmt.Errorf("parse mapping file %s: %w", s.path, err)
	}
	return m, nil
}

// Save performs a full overwrite of the persisted representation.
// Write to a temp file and rename on success so a crash mid-flush
// never leaves a torn mapping file.
func (s *Store) Save(m *Map) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create mapping dir: %w", err)
	}

	tmpPath := s.path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create mapping temp file: %w", err)
	}
	defer os.Remove(tmpPath) // Clean up on failure

	if err := json.MarshalWrite(f, m); err != nil {
		f.Close()
		return fmt.Errorf("write mapping file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close mapping file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename mapping file: %w", err)
	}
	return nil
}
