package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldUserID     = "user_id"
	FieldGoalID     = "goal_id"
	FieldTxID       = "transaction_id"
	FieldCount      = "count"
	FieldPhase      = "phase"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentTransport = "transport"
	ComponentSession   = "session"
	ComponentState     = "state"
	ComponentSnapshot  = "snapshot"
	ComponentExport    = "export"
	ComponentReport    = "report"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpLogin    = "login"
	OpRegister = "register"
	OpLogout   = "logout"
	OpCallback = "oauth_callback"
	OpLoad     = "load"
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpExport   = "export"
	OpRender   = "render"
)
