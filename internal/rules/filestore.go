package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// document mirrors the on-disk JSON layout. The settings block belongs to
// other tooling and is carried through untouched.
type document struct {
	Settings json.RawMessage `json:"settings"`
	Coins    []coinRecord    `json:"coins"`
}

type coinRecord struct {
	ID          string          `json:"id"`
	Symbol      string          `json:"symbol"`
	TargetPrice decimal.Decimal `json:"target_price"`
	Condition   string          `json:"condition"`
	Enabled     *bool           `json:"enabled"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// FileStore keeps rules in a single JSON document, written whole on every
// mutation via a temp-file rename. The in-memory copy stays authoritative
// when a write fails; the next successful write repairs the file.
type FileStore struct {
	path string

	mu  sync.Mutex
	doc document
}

// NewFileStore loads (or initialises) the rule document at path.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fs.doc = document{Settings: json.RawMessage("{}")}
			return fs, nil
		}
		return nil, fmt.Errorf("read rule store: %w", err)
	}

	if err := json.Unmarshal(raw, &fs.doc); err != nil {
		return nil, fmt.Errorf("parse rule store: %w", err)
	}
	if fs.doc.Settings == nil {
		fs.doc.Settings = json.RawMessage("{}")
	}
	return fs, nil
}

// List returns a snapshot copy of all rules.
func (s *FileStore) List(ctx context.Context) ([]Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Rule, 0, len(s.doc.Coins))
	for _, rec := range s.doc.Coins {
		out = append(out, rec.toRule())
	}
	return out, nil
}

// Get returns one rule by id.
func (s *FileStore) Get(ctx context.Context, id string) (Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Rule{}, ErrNotFound
	}
	return s.doc.Coins[idx].toRule(), nil
}

// Add appends a rule and persists the document.
func (s *FileStore) Add(ctx context.Context, rule Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Coins = append(s.doc.Coins, toRecord(rule))
	return s.persist()
}

// Update replaces a rule in place.
func (s *FileStore) Update(ctx context.Context, rule Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(rule.ID)
	if idx < 0 {
		return ErrNotFound
	}
	rule.UpdatedAt = time.Now().UTC()
	s.doc.Coins[idx] = toRecord(rule)
	return s.persist()
}

// Enable re-arms a rule.
func (s *FileStore) Enable(ctx context.Context, id string) error {
	return s.setEnabled(id, true)
}

// Disable marks a rule inactive without deleting it.
func (s *FileStore) Disable(ctx context.Context, id string) error {
	return s.setEnabled(id, false)
}

func (s *FileStore) setEnabled(id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	s.doc.Coins[idx].Enabled = &enabled
	now := time.Now().UTC()
	s.doc.Coins[idx].UpdatedAt = &now
	return s.persist()
}

// Remove deletes a rule permanently.
func (s *FileStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	s.doc.Coins = append(s.doc.Coins[:idx], s.doc.Coins[idx+1:]...)
	return s.persist()
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() {}

func (s *FileStore) indexOf(id string) int {
	for i, rec := range s.doc.Coins {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

// persist writes the whole document atomically. Caller holds the mutex.
func (s *FileStore) persist() error {
	payload, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rule store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write rule store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace rule store: %w", err)
	}
	return nil
}

func (r coinRecord) toRule() Rule {
	rule := Rule{
		ID:        r.ID,
		Symbol:    r.Symbol,
		Target:    r.TargetPrice,
		Condition: Condition(r.Condition),
		// Records written before the field existed are treated as enabled.
		Enabled: r.Enabled == nil || *r.Enabled,
	}
	if r.CreatedAt != nil {
		rule.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		rule.UpdatedAt = *r.UpdatedAt
	}
	return rule
}

func toRecord(rule Rule) coinRecord {
	enabled := rule.Enabled
	rec := coinRecord{
		ID:          rule.ID,
		Symbol:      rule.Symbol,
		TargetPrice: rule.Target,
		Condition:   string(rule.Condition),
		Enabled:     &enabled,
	}
	if !rule.CreatedAt.IsZero() {
		created := rule.CreatedAt
		rec.CreatedAt = &created
	}
	if !rule.UpdatedAt.IsZero() {
		updated := rule.UpdatedAt
		rec.UpdatedAt = &updated
	}
	return rec
}

// DefaultPath resolves a store path relative to the working directory.
func DefaultPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	wd, err := os.Getwd()
	if err != nil {
		return name
	}
	return filepath.Join(wd, name)
}

var _ Store = (*FileStore)(nil)
