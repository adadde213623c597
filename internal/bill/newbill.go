package bill

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"billed/internal/core"
)

// FormState tracks the new-bill form through its submission lifecycle.
type FormState int

const (
	Editing FormState = iota
	FileAttached
	Submitting
	Submitted
)

// Form carries the raw string field values read from the submission.
// Parsing to typed values happens in HandleSubmit.
type Form struct {
	Type       string
	Name       string
	Date       string
	Amount     string
	VAT        string
	Pct        string
	Commentary string
}

// NewBillController owns the transient state of the new-bill form: the
// attached file, field collection, submission and post-submit navigation.
type NewBillController struct {
	store   Store
	nav     Navigator
	session Session

	mu       sync.Mutex
	state    FormState
	file     *core.AttachedFile
	fileURL  *string
	fileName *string
	errMsg   string
	created  *core.Bill
}

func NewNewBillController(store Store, nav Navigator, session Session) *NewBillController {
	return &NewBillController{
		store:   store,
		nav:     nav,
		session: session,
		state:   Editing,
	}
}

// HandleChangeFile validates a file selection. Invalid selections are
// rejected without touching controller state: a previously attached valid
// file stays attached, and nothing ever reaches the network from here.
// A second valid selection replaces the first.
func (c *NewBillController) HandleChangeFile(f core.AttachedFile) bool {
	if !core.AcceptedReceiptFile(f.Name, f.MIMEType) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.file = &f
	c.fileURL = nil
	c.fileName = nil
	c.state = FileAttached
	return true
}

// SetFileLocation records where the attached file was persisted. The upload
// step must complete before HandleSubmit so the draft carries the final
// fileUrl/fileName pair; both are always set together.
func (c *NewBillController) SetFileLocation(url, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file == nil {
		return
	}
	c.fileURL = &url
	c.fileName = &name
}

// HandleSubmit parses the form fields into a draft bill and submits it.
// amount and pct must parse as integers; email comes from the session and is
// left absent when the session has none. New bills are always pending.
func (c *NewBillController) HandleSubmit(ctx context.Context, form Form) error {
	amount, err := strconv.Atoi(strings.TrimSpace(form.Amount))
	if err != nil {
		c.fail(fmt.Sprintf("montant invalide: %s", form.Amount))
		return core.ErrInvalidAmount
	}
	pct, err := strconv.Atoi(strings.TrimSpace(form.Pct))
	if err != nil {
		c.fail(fmt.Sprintf("pourcentage invalide: %s", form.Pct))
		return core.ErrInvalidPct
	}

	var email string
	if u, ok := c.session.CurrentUser(); ok {
		email = u.Email
	}

	c.mu.Lock()
	draft := core.Bill{
		Email:      email,
		Type:       form.Type,
		Name:       form.Name,
		Amount:     amount,
		Date:       form.Date,
		VAT:        form.VAT,
		Pct:        pct,
		Commentary: form.Commentary,
		FileURL:    c.fileURL,
		FileName:   c.fileName,
		Status:     core.StatusPending,
	}
	c.state = Submitting
	c.mu.Unlock()

	return c.CreateBill(ctx, draft)
}

// CreateBill sends the draft to the store. Success navigates back to the
// bill list; failure classifies the error, surfaces its message and returns
// the form to editing. There is no automatic retry: resubmission takes a
// fresh user-initiated submit.
func (c *NewBillController) CreateBill(ctx context.Context, draft core.Bill) error {
	created, err := c.store.Create(ctx, draft)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = Editing
		c.errMsg = FailureMessage(err)
		return err
	}
	c.state = Submitted
	c.errMsg = ""
	c.created = &created
	c.nav.Navigate(PathBills)
	return nil
}

func (c *NewBillController) fail(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Editing
	c.errMsg = msg
}

// State returns the current form state.
func (c *NewBillController) State() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// File returns the currently attached file, or nil.
func (c *NewBillController) File() *core.AttachedFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file
}

// Created returns the stored bill after a successful submit, or nil.
func (c *NewBillController) Created() *core.Bill {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.created
}

// ErrorMessage returns the error banner text, empty when there is none.
func (c *NewBillController) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}
