// ABOUTME: Backend interface implemented by the SQLite and Charm KV stores
// ABOUTME: Adds record creation, payment completion and the automation run log to the port
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/JFernandez0524/leadgen/models"
)

// Backend is what hosts (CLI, MCP, web) hold. The insight core only sees Port.
type Backend interface {
	Port

	// Create inserts a *models.Lead, *models.Payment or *models.Opportunity, assigning its ID.
	Create(ctx context.Context, rec models.Record) error
	CompletePayment(ctx context.Context, id uuid.UUID, paidAt time.Time, transactionID string) (*models.Payment, error)

	RecordRun(ctx context.Context, run models.AutomationRun) error
	ListRuns(ctx context.Context, limit int) ([]models.AutomationRun, error)

	Close() error
}
