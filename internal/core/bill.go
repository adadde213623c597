package core

import (
	"errors"
	"strings"
)

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

type (
	// Status is the lifecycle state of a persisted bill. New bills are
	// always created pending; transitions happen only through admin review.
	Status string

	// Bill is a single expense-report record. A bill without an ID is a
	// draft living in form state; the store assigns the ID on create.
	Bill struct {
		ID           string  `json:"id,omitempty"`
		Email        string  `json:"email,omitempty"`
		Type         string  `json:"type"`
		Name         string  `json:"name"`
		Amount       int     `json:"amount"`
		Date         string  `json:"date"` // ISO-8601, YYYY-MM-DD
		VAT          string  `json:"vat"`
		Pct          int     `json:"pct"`
		Commentary   string  `json:"commentary"`
		FileURL      *string `json:"fileUrl"`
		FileName     *string `json:"fileName"`
		Status       Status  `json:"status"`
		CommentAdmin string  `json:"commentAdmin,omitempty"`
	}

	// User is the identity read from the session at bill-creation time.
	// Email may be empty; it is propagated into the bill as-is.
	User struct {
		Type  string `json:"type"` // "Employee" or "Admin"
		Email string `json:"email,omitempty"`
	}
)

// ExpenseTypes is the fixed category set offered by the new-bill form.
var ExpenseTypes = []string{
	"Transports",
	"Restaurants et bars",
	"Hôtel et logement",
	"Services en ligne",
	"IT et électronique",
	"Equipement et matériel",
	"Fournitures de bureau",
}

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidPct    = errors.New("invalid percentage")
	ErrEmptyType     = errors.New("empty expense type")
)

// IsValid reports whether s is one of the three known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRefused:
		return true
	default:
		return false
	}
}

// Label returns the human-readable French label for s. Unknown statuses
// fall back to the raw value so a bad row still renders.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "En attente"
	case StatusAccepted:
		return "Accepté"
	case StatusRefused:
		return "Refusé"
	default:
		return string(s)
	}
}

// HasFile reports whether the bill carries an accepted receipt file.
// fileUrl and fileName are set together or not at all.
func (b Bill) HasFile() bool {
	return b.FileURL != nil && b.FileName != nil
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Type) == "" {
		return ErrEmptyType
	}
	if err := ValidateISODate(b.Date); err != nil {
		return err
	}
	if b.Amount <= 0 {
		return ErrInvalidAmount
	}
	if b.Pct < 0 || b.Pct > 100 {
		return ErrInvalidPct
	}
	return nil
}
