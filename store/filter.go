// ABOUTME: Filter conditions for listing records
// ABOUTME: Supports equality and membership on a whitelisted set of fields per collection
package store

import (
	"fmt"

	"github.com/JFernandez0524/leadgen/models"
)

type Operator string

const (
	OpEq Operator = "eq"
	OpIn Operator = "in"
)

// Condition is one field/operator/value triple.
type Condition struct {
	Field string   `json:"field"`
	Op    Operator `json:"op"`
	Value any      `json:"value"`
}

// Filter is a conjunction of conditions. A nil filter matches everything.
type Filter []Condition

func Eq(field string, value any) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

func In(field string, values ...any) Condition {
	return Condition{Field: field, Op: OpIn, Value: values}
}

var filterFields = map[models.Collection]map[string]bool{
	models.CollectionLeads:         {"id": true, "status": true, "is_qualified": true, "service_type": true, "source": true},
	models.CollectionPayments:      {"id": true, "status": true, "lead_id": true, "currency": true},
	models.CollectionOpportunities: {"id": true, "stage": true, "lead_id": true},
}

// Validate rejects unknown fields and operators for the collection.
func (f Filter) Validate(collection models.Collection) error {
	allowed, ok := filterFields[collection]
	if !ok {
		return fmt.Errorf("unknown collection: %s", collection)
	}
	for _, c := range f {
		if !allowed[c.Field] {
			return fmt.Errorf("%w: %s on %s", ErrUnsupportedField, c.Field, collection)
		}
		switch c.Op {
		case OpEq:
		case OpIn:
			if _, ok := c.Value.([]any); !ok {
				return fmt.Errorf("in operator on %s requires a list value", c.Field)
			}
		default:
			return fmt.Errorf("unsupported operator: %s", c.Op)
		}
	}
	return nil
}

// Matches evaluates the filter against a record in memory.
func (f Filter) Matches(r models.Record) bool {
	for _, c := range f {
		got, ok := r.Field(c.Field)
		if !ok {
			return false
		}
		switch c.Op {
		case OpEq:
			if !equalValue(got, c.Value) {
				return false
			}
		case OpIn:
			values, _ := c.Value.([]any)
			found := false
			for _, v := range values {
				if equalValue(got, v) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// equalValue compares after normalizing typed strings like models.Stage.
func equalValue(a, b any) bool {
	return normalize(a) == normalize(b)
}

func normalize(v any) any {
	switch x := v.(type) {
	case fmt.Stringer:
		return x.String()
	case models.LeadStatus:
		return string(x)
	case models.PaymentStatus:
		return string(x)
	case models.Stage:
		return string(x)
	}
	return v
}
