package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"clinicreport/internal/config"
	"clinicreport/internal/events"
	"clinicreport/internal/source"
	"clinicreport/internal/storage"
	"clinicreport/internal/worker"
)

const seed = `{
  "expenses": [
    {"_id": "e1", "doctor": {"_id": "d1", "name": "Dr. Rao"},
     "patient": {"firstName": "Asha", "lastName": "K", "patientNumber": "P-1"},
     "created_at": "2024-03-10T09:00:00Z", "totalCost": 500, "grandTotal": 450,
     "paid": true, "paymentMethod": "cash"}
  ],
  "doctors": [{"_id": "d1", "name": "Dr. Rao", "role": 1}]
}`

func TestCreateBackend_Memory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:     MemoryBackend,
		SeedFile: path,
		Location: time.UTC,
	})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()

	ctx := context.Background()
	page, err := res.Source.ListExpenses(ctx, source.ListParams{Page: 1, PageSize: 10})
	if err != nil || page.TotalCount != 1 {
		t.Fatalf("ListExpenses() = %+v, %v", page, err)
	}
	docs, err := res.Source.ListDoctors(ctx)
	if err != nil || len(docs) != 1 {
		t.Fatalf("ListDoctors() = %+v, %v", docs, err)
	}
	if _, ok := res.Recorder.(*worker.LogRecorder); !ok {
		t.Errorf("Recorder = %T, want *worker.LogRecorder", res.Recorder)
	}
	if err := res.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestCreateBackend_SQLite(t *testing.T) {
	bus := events.NewBus()
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "clinic.db"),
		Migrate:      true,
		Events:       bus,
		Location:     time.UTC,
	})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()

	if _, ok := res.Recorder.(*storage.Repository); !ok {
		t.Errorf("Recorder = %T, want *storage.Repository", res.Recorder)
	}

	ctx := context.Background()
	if err := res.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	page, err := res.Source.ListExpenses(ctx, source.ListParams{Page: 1, PageSize: 10})
	if err != nil || page.TotalCount != 0 {
		t.Fatalf("ListExpenses() = %+v, %v", page, err)
	}
	if err := res.Source.DeleteExpense(ctx, "missing"); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("DeleteExpense() error = %v, want ErrNotFound", err)
	}
	// No AMQP configured: publishing on the bus must be harmless.
	bus.PublishDelete(ctx, events.DeleteCompleted{ID: "missing", Err: source.ErrNotFound})
}

func TestCreateBackend_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"unknown type", Config{Type: "mongo"}},
		{"sqlite without path", Config{Type: SQLiteBackend}},
		{"postgres without url", Config{Type: PostgresBackend}},
		{"sheets without credentials", Config{Type: SheetsBackend, GoogleSpreadsheetID: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFactory(nil).CreateBackend(context.Background(), tt.config); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil, nil); err == nil {
		t.Error("expected error for nil config")
	}

	cfg := &config.Config{
		DataBackend: "postgres",
		DatabaseURL: "postgres://localhost/clinic",
		AMQPURL:     "amqp://localhost/",
		Timezone:    "UTC",
		CacheTTL:    time.Minute,
	}
	got, err := FromAppConfig(cfg, events.NewBus())
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if got.Type != PostgresBackend || got.DatabaseURL != cfg.DatabaseURL || got.AMQPURL != cfg.AMQPURL {
		t.Errorf("unexpected backend config: %+v", got)
	}
	if got.Location != time.UTC || got.Events == nil || !got.Migrate {
		t.Errorf("location/events/migrate not carried: %+v", got)
	}

	cfg.DataBackend = "mongo"
	if _, err := FromAppConfig(cfg, nil); err == nil {
		t.Error("expected error for invalid backend")
	}
}
