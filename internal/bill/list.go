package bill

import (
	"context"
	"sync"

	"billed/internal/core"
)

// ListState is the render state of the bills page. Exactly one state drives
// the view at any time.
type ListState int

const (
	StateLoading ListState = iota
	StateError
	StateReady
)

// Row is one rendered bill line. Date and status labels are derived at
// render time, never stored back on the bill.
type Row struct {
	Bill          core.Bill
	FormattedDate string
	StatusLabel   string
}

// ListView is what the rendering boundary consumes: one of loading, error
// (with the specific message) or ready (with ordered rows).
type ListView struct {
	State   ListState
	Message string
	Rows    []Row
}

// ListController loads and orders the bill collection and mediates the two
// list-page intents: preview a receipt and start a new submission.
type ListController struct {
	store Store
	nav   Navigator
	modal ModalOpener

	mu     sync.Mutex
	active bool
	gen    int
	view   ListView
}

func NewListController(store Store, nav Navigator, modal ModalOpener) *ListController {
	return &ListController{
		store:  store,
		nav:    nav,
		modal:  modal,
		active: true,
		view:   ListView{State: StateLoading},
	}
}

// Load fetches the bill collection and resolves the view to ready or error.
// A newer Load fully supersedes this one, and a Load finishing after
// Teardown leaves the view untouched.
func (c *ListController) Load(ctx context.Context) ListView {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.view = ListView{State: StateLoading}
	c.mu.Unlock()

	bills, err := c.store.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active || gen != c.gen {
		return c.view // stale result, keep whatever the newer call rendered
	}
	if err != nil {
		c.view = ListView{State: StateError, Message: FailureMessage(err)}
		return c.view
	}

	core.SortAntiChronological(bills)
	rows := make([]Row, len(bills))
	for i, b := range bills {
		rows[i] = Row{
			Bill:          b,
			FormattedDate: core.FormatDate(b.Date),
			StatusLabel:   b.Status.Label(),
		}
	}
	c.view = ListView{State: StateReady, Rows: rows}
	return c.view
}

// View returns the current render state.
func (c *ListController) View() ListView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// HandleClickIconEye opens a preview of the bill's receipt. Bills without a
// file have no eye affordance, so the click is a no-op for them. The bill
// itself is never mutated.
func (c *ListController) HandleClickIconEye(b core.Bill) {
	if !b.HasFile() {
		return
	}
	c.modal.ShowFile(*b.FileURL, *b.FileName)
}

// HandleClickNewBill navigates to the new-bill form. No network call.
func (c *ListController) HandleClickNewBill() {
	c.nav.Navigate(PathNewBill)
}

// Teardown marks the controller inactive; in-flight loads become no-ops.
func (c *ListController) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
}
