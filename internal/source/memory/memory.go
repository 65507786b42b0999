// Package memory is an in-process expense source, seeded from a JSON file.
// It backs local development and the CLI when no database is configured.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"clinicreport/internal/core"
	"clinicreport/internal/source"
)

type Store struct {
	mu      sync.RWMutex
	loc     *time.Location
	records []core.ExpenseRecord
	doctors []core.Doctor
}

// New returns an empty store that evaluates day filters in loc.
func New(loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{loc: loc}
}

// NewFromFile loads a seed file. A missing file yields an empty store.
func NewFromFile(path string, loc *time.Location) (*Store, error) {
	s := New(loc)
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	if err := s.Load(data); err != nil {
		return nil, fmt.Errorf("load seed %s: %w", path, err)
	}
	return s, nil
}

// Load replaces the store contents with the decoded seed document.
func (s *Store) Load(data []byte) error {
	var doc seedDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	records := make([]core.ExpenseRecord, 0, len(doc.Expenses))
	for i, e := range doc.Expenses {
		r := e.record()
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("expense %d: %w", i, err)
		}
		records = append(records, r)
	}
	doctors := make([]core.Doctor, 0, len(doc.Doctors))
	for _, d := range doc.Doctors {
		doctors = append(doctors, core.Doctor{ID: d.ID, Name: d.Name, Role: d.Role})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.doctors = doctors
	return nil
}

// Add stores a record, assigning an id when it has none.
func (s *Store) Add(r core.ExpenseRecord) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := r.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return r.ID, nil
}

func (s *Store) AddDoctor(d core.Doctor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doctors = append(s.doctors, d)
}

func (s *Store) ListExpenses(_ context.Context, p source.ListParams) (source.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return source.Apply(s.records, p, s.loc)
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i:i], s.records[i+1:]...)
			return nil
		}
	}
	return source.ErrNotFound
}

func (s *Store) ListDoctors(context.Context) ([]core.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Doctor(nil), s.doctors...), nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

var _ source.Source = (*Store)(nil)
