package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldAccountID   = "account_id"
	FieldAmountCents = "amount_cents"
	FieldSymbol      = "symbol"
	FieldTransferID  = "transfer_id"
	FieldRecurringID = "recurring_id"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentStorage    = "storage"
	ComponentLedger     = "ledger"
	ComponentTransfer   = "transfer"
	ComponentInvestment = "investment"
	ComponentRecurring  = "recurring"
	ComponentReconciler = "reconciler"
	ComponentAMQP       = "amqp"
	ComponentRates      = "rates"
	ComponentWorker     = "worker"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpDelete    = "delete"
	OpList      = "list"
	OpTransfer  = "transfer"
	OpBuy       = "buy"
	OpSell      = "sell"
	OpGenerate  = "generate"
	OpReconcile = "reconcile"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
