package backend

import (
	"context"
	"time"

	"clinicreport/internal/events"
	"clinicreport/internal/source"
	"clinicreport/internal/worker"
)

// CleanupFunc releases the resources a backend holds.
type CleanupFunc func() error

// BackendResult bundles everything built around one data backend.
type BackendResult struct {
	// Source is what the report controller consumes.
	Source source.Source
	// Recorder stores delete audits: the SQL audit table when available,
	// the log otherwise.
	Recorder worker.Recorder
	// Ping reports backend readiness.
	Ping    func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQL
	SQLiteDBPath string
	DatabaseURL  string
	Migrate      bool

	// Memory
	SeedFile string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleExpensesSheet      string
	GoogleDoctorsSheet       string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Delete events. AMQPURL may be empty.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	Events       *events.Bus

	Location *time.Location
	CacheTTL time.Duration
}

type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	SheetsBackend   BackendType = "sheets"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
