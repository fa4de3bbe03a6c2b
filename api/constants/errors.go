package constants

// ============================================================================
// VALIDATION ERRORS - Upload & Ingestion
// ============================================================================

const (
	ErrMissingOwnerOrCompany = "Missing owner email or company"
	ErrStagingIDRequired     = "Staging identifier is required"
	ErrRowIDRequired         = "Row identifier is required"
	ErrEmptyBatch            = "Upload contains no data rows"
	ErrMissingFieldInRow     = `Missing field "%s" in row %d`
	ErrInvalidDateInRow      = `Invalid date "%v" in row %d`
	ErrInvalidAmountInRow    = `Invalid amount "%v" in row %d`
	ErrNegativeAmountInRow   = `Negative amount "%v" in row %d`
	ErrInvalidNumericInRow   = `Invalid value "%v" for field "%s" in row %d`
	ErrStagingIDCollision    = "Staging identifier already exists, retry the upload"
)

// ============================================================================
// VALIDATION ERRORS - Row mutation
// ============================================================================

const (
	ErrRowNotFound        = "Row not found"
	ErrUploadNotFound     = "Upload not found"
	ErrUnknownUpdateField = `Unknown field "%s" in update payload`
	ErrRowAlreadySent     = "Row has already been sent and can no longer be edited"
	ErrEmptyUpdatePayload = "Update payload is empty"
)

// ============================================================================
// EXTERNAL DEPENDENCY ERRORS - Tally connector
// ============================================================================

const (
	ErrNoEligibleRows       = "No transactions found with assigned ledgers"
	ErrConnectorUnreachable = "Tally connector is offline or unreachable"
	ErrConnectorSendFailed  = "Failed to send data to Tally connector"
	ErrInvalidDispatchRows  = "Some transactions have invalid data"
)

// ============================================================================
// FILE UPLOAD ERRORS
// ============================================================================

const (
	ErrFileUploadFailed  = "File upload failed. Please check the file format and try again"
	ErrInvalidFileFormat = "Invalid file format. Please upload a valid file"
	ErrFileParsingFailed = "Failed to parse file contents. Please check the file format"
	ErrEmptyFile         = "Uploaded file is empty"
)
