package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldExpenseID  = "expense_id"
	FieldDoctorID   = "doctor_id"
	FieldStartDate  = "start_date"
	FieldEndDate    = "end_date"
	FieldPage       = "page"
	FieldPageSize   = "page_size"
	FieldTotalCount = "total_count"
	FieldSequence   = "sequence"
	FieldBackend    = "backend"
	FieldUserID     = "user_id"
	FieldDialect    = "dialect"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentReport    = "report"
	ComponentExpense   = "expense"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentSession   = "session"
	ComponentRateLimit = "rate_limit"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpList     = "list"
	OpDelete   = "delete"
	OpFetch    = "fetch"
	OpApply    = "apply"
	OpPaginate = "paginate"
	OpMount    = "mount"
	OpAudit    = "audit"
	OpMigrate  = "migrate"
	OpImport   = "import"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithQuery adds the listing parameters of a fetch. Unset filters are left
// out so log lines mirror what is sent to the source.
func (f LogFields) WithQuery(page, pageSize int, doctorID, startDate, endDate string) LogFields {
	f[FieldPage] = page
	f[FieldPageSize] = pageSize
	if doctorID != "" {
		f[FieldDoctorID] = doctorID
	}
	if startDate != "" {
		f[FieldStartDate] = startDate
	}
	if endDate != "" {
		f[FieldEndDate] = endDate
	}
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
