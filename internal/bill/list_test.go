package bill

import (
	"context"
	"sync"
	"testing"

	"billed/internal/core"
)

type fakeStore struct {
	mu      sync.Mutex
	bills   []core.Bill
	listErr error

	createErr   error
	created     []core.Bill
	listCalls   int
	createCalls int
}

func (f *fakeStore) List(ctx context.Context) ([]core.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]core.Bill(nil), f.bills...), nil
}

func (f *fakeStore) Create(ctx context.Context, draft core.Bill) (core.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return core.Bill{}, f.createErr
	}
	draft.ID = "47qAXb6fIm2zOKkLzMro"
	f.created = append(f.created, draft)
	return draft, nil
}

type fakeNav struct{ paths []string }

func (f *fakeNav) Navigate(path string) { f.paths = append(f.paths, path) }

type fakeModal struct{ opened []string }

func (f *fakeModal) ShowFile(fileURL, fileName string) { f.opened = append(f.opened, fileURL) }

func str(s string) *string { return &s }

func TestLoadOrdersAntiChronological(t *testing.T) {
	store := &fakeStore{bills: []core.Bill{
		{Name: "a", Date: "2004-04-04", Status: core.StatusPending},
		{Name: "b", Date: "2001-01-01", Status: core.StatusAccepted},
		{Name: "c", Date: "2002-02-02", Status: core.StatusRefused},
	}}
	c := NewListController(store, &fakeNav{}, &fakeModal{})

	view := c.Load(context.Background())
	if view.State != StateReady {
		t.Fatalf("expected ready, got %v (%s)", view.State, view.Message)
	}

	want := []string{"04 Avr. 04", "02 Fév. 02", "01 Jan. 01"}
	if len(view.Rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(view.Rows))
	}
	for i, w := range want {
		if view.Rows[i].FormattedDate != w {
			t.Fatalf("row %d: got %q, want %q", i, view.Rows[i].FormattedDate, w)
		}
	}
	for i := 0; i < len(view.Rows)-1; i++ {
		if view.Rows[i].Bill.Date < view.Rows[i+1].Bill.Date {
			t.Fatalf("dates not non-increasing at row %d", i)
		}
	}
}

func TestLoadKeepsOrderOfEqualDates(t *testing.T) {
	store := &fakeStore{bills: []core.Bill{
		{Name: "first", Date: "2003-03-03"},
		{Name: "second", Date: "2003-03-03"},
	}}
	c := NewListController(store, &fakeNav{}, &fakeModal{})

	view := c.Load(context.Background())
	if view.Rows[0].Bill.Name != "first" || view.Rows[1].Bill.Name != "second" {
		t.Fatalf("equal dates reordered: %s, %s", view.Rows[0].Bill.Name, view.Rows[1].Bill.Name)
	}
}

func TestLoadStatusLabelsDerived(t *testing.T) {
	store := &fakeStore{bills: []core.Bill{
		{Date: "2004-04-04", Status: core.StatusPending},
		{Date: "2003-03-03", Status: core.StatusAccepted},
		{Date: "2002-02-02", Status: core.StatusRefused},
	}}
	c := NewListController(store, &fakeNav{}, &fakeModal{})

	view := c.Load(context.Background())
	want := []string{"En attente", "Accepté", "Refusé"}
	for i, w := range want {
		if view.Rows[i].StatusLabel != w {
			t.Fatalf("row %d: got %q, want %q", i, view.Rows[i].StatusLabel, w)
		}
	}
}

func TestLoadErrorSurfacesExactMessage(t *testing.T) {
	store := &fakeStore{listErr: ErrNotFound}
	c := NewListController(store, &fakeNav{}, &fakeModal{})

	view := c.Load(context.Background())
	if view.State != StateError {
		t.Fatalf("expected error state, got %v", view.State)
	}
	if view.Message != "Erreur 404" {
		t.Fatalf("expected exact message %q, got %q", "Erreur 404", view.Message)
	}
}

func TestLoadAfterTeardownIsNoOp(t *testing.T) {
	store := &fakeStore{bills: []core.Bill{{Date: "2004-04-04"}}}
	c := NewListController(store, &fakeNav{}, &fakeModal{})
	c.Teardown()

	c.Load(context.Background())
	if v := c.View(); v.State != StateLoading {
		t.Fatalf("torn-down controller rendered state %v", v.State)
	}
}

// blockingStore parks the first List call until released, to order two
// in-flight loads deterministically.
type blockingStore struct {
	started chan struct{}
	release chan struct{}
	n       int
	mu      sync.Mutex
}

func (s *blockingStore) List(ctx context.Context) ([]core.Bill, error) {
	s.mu.Lock()
	s.n++
	n := s.n
	s.mu.Unlock()
	if n == 1 {
		close(s.started)
		<-s.release // first call resolves last
		return []core.Bill{{Name: "stale", Date: "2000-01-01"}}, nil
	}
	return []core.Bill{{Name: "fresh", Date: "2020-01-01"}}, nil
}

func (s *blockingStore) Create(ctx context.Context, d core.Bill) (core.Bill, error) {
	return d, nil
}

func TestNewerLoadSupersedesOlder(t *testing.T) {
	store := &blockingStore{started: make(chan struct{}), release: make(chan struct{})}
	c := NewListController(store, &fakeNav{}, &fakeModal{})

	done := make(chan struct{})
	go func() {
		c.Load(context.Background())
		close(done)
	}()
	<-store.started

	c.Load(context.Background())
	close(store.release)
	<-done

	view := c.View()
	if view.State != StateReady || len(view.Rows) != 1 || view.Rows[0].Bill.Name != "fresh" {
		t.Fatalf("stale load overwrote newer render: %+v", view)
	}
}

func TestHandleClickIconEye(t *testing.T) {
	store := &fakeStore{}
	modal := &fakeModal{}
	c := NewListController(store, &fakeNav{}, modal)

	b := core.Bill{
		ID:       "bill-1",
		Date:     "2004-04-04",
		Status:   core.StatusPending,
		FileURL:  str("/uploads/receipt.png"),
		FileName: str("receipt.png"),
	}
	before := b

	c.HandleClickIconEye(b)
	c.HandleClickIconEye(b)

	if len(modal.opened) != 2 {
		t.Fatalf("expected modal opened twice, got %d", len(modal.opened))
	}
	if b != before {
		t.Fatalf("bill mutated by preview")
	}
	if store.createCalls != 0 || store.listCalls != 0 {
		t.Fatalf("preview must not touch the store")
	}
}

func TestHandleClickIconEyeWithoutFile(t *testing.T) {
	modal := &fakeModal{}
	c := NewListController(&fakeStore{}, &fakeNav{}, modal)

	c.HandleClickIconEye(core.Bill{ID: "no-file", Date: "2004-04-04"})
	if len(modal.opened) != 0 {
		t.Fatalf("bill without file has no eye affordance")
	}
}

func TestHandleClickNewBill(t *testing.T) {
	store := &fakeStore{}
	nav := &fakeNav{}
	c := NewListController(store, nav, &fakeModal{})

	c.HandleClickNewBill()
	if len(nav.paths) != 1 || nav.paths[0] != PathNewBill {
		t.Fatalf("expected navigation to %s, got %v", PathNewBill, nav.paths)
	}
	if store.listCalls != 0 && store.createCalls != 0 {
		t.Fatalf("pure navigation must not call the store")
	}
}
