package backend

import (
	"context"
	"fmt"
	"time"

	"clinicreport/internal/adapters"
	"clinicreport/internal/amqp"
	applog "clinicreport/internal/log"
	"clinicreport/internal/services"
	"clinicreport/internal/source"
	"clinicreport/internal/source/google"
	"clinicreport/internal/source/memory"
	"clinicreport/internal/storage"
	"clinicreport/internal/worker"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// raw is a data backend before the services are wrapped around it.
type raw struct {
	src      source.Source
	recorder worker.Recorder
	ping     func(ctx context.Context) error
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Location == nil {
		config.Location = time.Local
	}

	var (
		r   raw
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		r, err = f.createSQLBackend(ctx, storage.DialectSQLite, config.SQLiteDBPath, config)
	case PostgresBackend:
		r, err = f.createSQLBackend(ctx, storage.DialectPostgres, config.DatabaseURL, config)
	case SheetsBackend:
		r, err = f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		r, err = f.createMemoryBackend(config)
	default:
		err = fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}
	if r.recorder == nil {
		r.recorder = worker.NewLogRecorder(f.logger)
	}

	return f.wrap(r, config), nil
}

// wrap puts the expense service, the doctor directory and the optional
// AMQP publisher around a raw backend.
func (f *DefaultFactory) wrap(r raw, config Config) *BackendResult {
	var publisher services.Publisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without delete events",
				applog.FieldError, err)
		} else {
			publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	service := services.NewExpenseService(r.src, publisher, f.logger)
	unsubscribe := func() {}
	if config.Events != nil {
		unsubscribe = service.Subscribe(config.Events)
	}
	ttl := config.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	doctors := services.NewDoctorDirectory(r.src, ttl, f.logger)

	ping := r.ping
	if ping == nil {
		ping = func(context.Context) error { return nil }
	}

	return &BackendResult{
		Source:   adapters.NewSourceAdapter(r.src, service, doctors),
		Recorder: r.recorder,
		Ping:     ping,
		Cleanup: func() error {
			unsubscribe()
			return service.Close()
		},
	}
}

func (f *DefaultFactory) createSQLBackend(ctx context.Context, dialect storage.Dialect, dsn string, config Config) (raw, error) {
	repo, err := storage.Open(ctx, storage.Options{
		Dialect:  dialect,
		DSN:      dsn,
		Location: config.Location,
		Migrate:  config.Migrate,
	}, f.logger)
	if err != nil {
		return raw{}, fmt.Errorf("failed to initialize %s repository: %w", dialect, err)
	}

	f.logger.Info("Initialized SQL backend", applog.FieldDialect, dialect)
	return raw{src: repo, recorder: repo, ping: repo.Ping}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (raw, error) {
	cli, err := google.New(ctx, google.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		ExpensesSheet:   config.GoogleExpensesSheet,
		DoctorsSheet:    config.GoogleDoctorsSheet,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
		Location:        config.Location,
	}, f.logger)
	if err != nil {
		return raw{}, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)
	return raw{src: cli, ping: cli.Ping}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (raw, error) {
	store, err := memory.NewFromFile(config.SeedFile, config.Location)
	if err != nil {
		return raw{}, fmt.Errorf("failed to load seed file: %w", err)
	}

	f.logger.Info("Initialized memory backend",
		"seed_file", config.SeedFile,
		"records", store.Len())
	return raw{src: store}, nil
}
