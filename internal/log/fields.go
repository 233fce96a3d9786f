package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldCollection  = "collection"
	FieldYear        = "year"
	FieldRowIndex    = "row_index"
	FieldDescription = "description"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldCard        = "card"
	FieldStale       = "stale"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentService  = "service"
	ComponentCache    = "cache"
	ComponentSheets   = "sheets"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentBackend  = "backend"
)

// Operations defines standard operation names
const (
	OpCreate     = "create"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpList       = "list"
	OpRefresh    = "refresh"
	OpInvalidate = "invalidate"
	OpWarm       = "warm"
	OpShutdown   = "shutdown"
	OpStartup    = "startup"
)
