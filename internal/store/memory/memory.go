// Package memory provides an in-memory bill store. It is the default
// backend and the one the test suite runs against.
package memory

import (
	"context"
	"fmt"
	"sync"

	"billed/internal/core"
)

type Store struct {
	mu    sync.Mutex
	next  int
	bills []core.Bill
}

func New(seed []core.Bill) *Store {
	s := &Store{next: len(seed) + 1}
	s.bills = append(s.bills, seed...)
	return s
}

// NewWithFixtures returns a store pre-loaded with a small demo collection.
func NewWithFixtures() *Store {
	url := "/uploads/facture-demo.jpg"
	name := "facture-demo.jpg"
	return New([]core.Bill{
		{ID: "1", Email: "a@a", Type: "Hôtel et logement", Name: "encore", Amount: 400, Date: "2004-04-04", VAT: "80", Pct: 20, Commentary: "séminaire billed", FileURL: &url, FileName: &name, Status: core.StatusPending},
		{ID: "2", Email: "a@a", Type: "Transports", Name: "test1", Amount: 100, Date: "2001-01-01", VAT: "70", Pct: 20, Status: core.StatusRefused},
		{ID: "3", Email: "a@a", Type: "Services en ligne", Name: "test3", Amount: 300, Date: "2003-03-03", VAT: "60", Pct: 20, Status: core.StatusAccepted},
		{ID: "4", Email: "a@a", Type: "Restaurants et bars", Name: "test2", Amount: 200, Date: "2002-02-02", VAT: "40", Pct: 20, Status: core.StatusPending},
	})
}

// List returns a copy of the stored bills, in insertion order. Ordering for
// display is the caller's concern.
func (s *Store) List(_ context.Context) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Bill(nil), s.bills...), nil
}

// Create stores the draft and assigns it an identifier.
func (s *Store) Create(_ context.Context, draft core.Bill) (core.Bill, error) {
	if err := draft.Validate(); err != nil {
		return core.Bill{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	draft.ID = fmt.Sprintf("mem:%d", s.next)
	s.next++
	s.bills = append(s.bills, draft)
	return draft, nil
}

// UpdateStatus applies an admin review decision to a stored bill.
func (s *Store) UpdateStatus(_ context.Context, id string, status core.Status, commentAdmin string) error {
	if !status.IsValid() {
		return fmt.Errorf("unknown status: %s", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bills {
		if s.bills[i].ID == id {
			s.bills[i].Status = status
			s.bills[i].CommentAdmin = commentAdmin
			return nil
		}
	}
	return fmt.Errorf("bill %s not found", id)
}
