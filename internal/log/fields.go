package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldEntity      = "entity"
	FieldPage        = "page"
	FieldCursor      = "after"
	FieldFetched     = "fetched"
	FieldTotalCount  = "total_count"
	FieldCustomerBIN = "customer_bin"
	FieldFinYear     = "fin_year"
	FieldQuarter     = "quarter"
	FieldRecordID    = "record_id"
	FieldRunID       = "run_id"
	FieldSheet       = "sheet"
	FieldPartial     = "partial"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentGraphQL    = "graphql"
	ComponentPaginator  = "paginator"
	ComponentNormalizer = "normalizer"
	ComponentReport     = "report"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentSheets     = "sheets"
)

// Operations defines standard operation names
const (
	OpFetch    = "fetch"
	OpCount    = "count"
	OpDecode   = "decode"
	OpRender   = "render"
	OpWrite    = "write"
	OpSave     = "save"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithScope adds the report scope fields.
func (f LogFields) WithScope(customerBIN string, finYear int, quarter string) LogFields {
	f[FieldCustomerBIN] = customerBIN
	f[FieldFinYear] = finYear
	if quarter != "" {
		f[FieldQuarter] = quarter
	}
	return f
}

// WithPage adds pagination progress fields.
func (f LogFields) WithPage(entity string, page int, after int64, fetched int) LogFields {
	f[FieldEntity] = entity
	f[FieldPage] = page
	f[FieldCursor] = after
	f[FieldFetched] = fetched
	return f
}

// WithHTTP adds request and response fields.
func (f LogFields) WithHTTP(method, path string, statusCode int, durationMs int64) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
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
