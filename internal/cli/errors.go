package cli

// Command-level error codes, reported alongside the engine's own codes
// (PARSE_ERROR, FIELD_NOT_FOUND, ...) in JSON output.
const (
	ErrCodeLoad   = "LOAD_ERROR"   // documents could not be read or decoded
	ErrCodeConfig = "CONFIG_ERROR" // config file unreadable or malformed
	ErrCodeCache  = "CACHE_ERROR"  // schema cache could not be opened
)
