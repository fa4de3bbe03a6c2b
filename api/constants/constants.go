package constants

// Common error messages
const (
	ErrInvalidJSONShort = "Invalid JSON"
	ErrMethodNotAllowed = "Method Not Allowed"
)

// DB / SQL error templates
const (
	ErrTxStartFailed  = "failed to start transaction: "
	ErrTxCommitFailed = "failed to commit transaction: "
	ErrQueryFailed    = "query failed: "
)

// Content Types
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "Content-Type"
)

// Date formats
const (
	DateFormat = "2006-01-02"
)

// Row lifecycle statuses for staged rows
const (
	StatusPending = "pending"
	StatusSaved   = "saved"
	StatusSent    = "sent"
)
