// ABOUTME: Record abstraction shared by every store implementation
// ABOUTME: Exposes collection identity and filterable fields for leads, payments and opportunities
package models

import (
	"github.com/google/uuid"
)

// Collection names one of the three record collections.
type Collection string

const (
	CollectionLeads         Collection = "leads"
	CollectionPayments      Collection = "payments"
	CollectionOpportunities Collection = "opportunities"
)

var Collections = []Collection{CollectionLeads, CollectionPayments, CollectionOpportunities}

// Record is implemented by Lead, Payment and Opportunity.
type Record interface {
	RecordID() uuid.UUID
	Collection() Collection
	// Field returns the value of a filterable field.
	Field(name string) (any, bool)
}

// Ref identifies a record without carrying its contents.
type Ref struct {
	Collection Collection `json:"collection"`
	ID         uuid.UUID  `json:"id"`
}

func RefOf(r Record) Ref {
	return Ref{Collection: r.Collection(), ID: r.RecordID()}
}

func (l Lead) RecordID() uuid.UUID    { return l.ID }
func (l Lead) Collection() Collection { return CollectionLeads }

func (l Lead) Field(name string) (any, bool) {
	switch name {
	case "id":
		return l.ID.String(), true
	case "status":
		return string(l.Status), true
	case "is_qualified":
		return l.IsQualified, true
	case "service_type":
		return l.ServiceType, true
	case "source":
		return l.Source, true
	}
	return nil, false
}

func (p Payment) RecordID() uuid.UUID    { return p.ID }
func (p Payment) Collection() Collection { return CollectionPayments }

func (p Payment) Field(name string) (any, bool) {
	switch name {
	case "id":
		return p.ID.String(), true
	case "status":
		return string(p.Status), true
	case "lead_id":
		return p.LeadID.String(), true
	case "currency":
		return p.Currency, true
	}
	return nil, false
}

func (o Opportunity) RecordID() uuid.UUID    { return o.ID }
func (o Opportunity) Collection() Collection { return CollectionOpportunities }

func (o Opportunity) Field(name string) (any, bool) {
	switch name {
	case "id":
		return o.ID.String(), true
	case "stage":
		return string(o.Stage), true
	case "lead_id":
		return o.LeadID.String(), true
	}
	return nil, false
}
