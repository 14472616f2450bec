// ABOUTME: Data Access Port consumed by the insight engine and automation executor
// ABOUTME: Defines List/Update, filter conditions, patches and the DataAccessError type
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/JFernandez0524/leadgen/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrUnsupportedField  = errors.New("unsupported filter field")
	ErrUnsupportedPatch  = errors.New("unsupported patch for collection")
)

// Port is the read/write surface the core needs from the record store.
type Port interface {
	List(ctx context.Context, collection models.Collection, filter Filter) ([]models.Record, error)
	Update(ctx context.Context, collection models.Collection, id uuid.UUID, patch Patch) (models.Record, error)
}

// Patch is a partial update. Only the fields the core is allowed to write exist here.
type Patch struct {
	// AppendNote is appended to notes (leads, payments) or description (opportunities).
	AppendNote string `json:"append_note,omitempty"`
	// LeadStatus may only advance a lead from new to contacted.
	LeadStatus *models.LeadStatus `json:"lead_status,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.AppendNote == "" && p.LeadStatus == nil
}

// Validate checks the patch against the collection it targets.
func (p Patch) Validate(collection models.Collection) error {
	if p.LeadStatus == nil {
		return nil
	}
	if collection != models.CollectionLeads {
		return fmt.Errorf("%w: lead_status on %s", ErrUnsupportedPatch, collection)
	}
	if *p.LeadStatus != models.LeadContacted {
		return fmt.Errorf("%w: only new -> contacted is allowed, got %s", ErrIllegalTransition, *p.LeadStatus)
	}
	return nil
}

// CheckTransition enforces the single sanctioned lead status change.
func CheckTransition(from models.LeadStatus, patch Patch) error {
	if patch.LeadStatus == nil {
		return nil
	}
	if from != models.LeadNew {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, *patch.LeadStatus)
	}
	return nil
}

// JoinNote appends note to existing text with the separator used by the collection.
func JoinNote(collection models.Collection, existing, note string) string {
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	if collection == models.CollectionOpportunities {
		return existing + " - " + note
	}
	return existing + "\n" + note
}

// DataAccessError reports a transport, auth, or write failure against the store.
type DataAccessError struct {
	Op         string
	Collection models.Collection
	ID         uuid.UUID
	Err        error
}

func (e *DataAccessError) Error() string {
	if e.ID != uuid.Nil {
		return fmt.Sprintf("data access %s %s/%s: %v", e.Op, e.Collection, e.ID, e.Err)
	}
	return fmt.Sprintf("data access %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// Wrap returns err as a DataAccessError unless it already is one.
func Wrap(op string, collection models.Collection, id uuid.UUID, err error) error {
	if err == nil {
		return nil
	}
	var dae *DataAccessError
	if errors.As(err, &dae) {
		return err
	}
	return &DataAccessError{Op: op, Collection: collection, ID: id, Err: err}
}
