package middleware

// contextKey is a private type for context keys defined in this package.
// Using a custom type prevents collisions with other packages.
type contextKey string

const (
	loggerKey   = contextKey("logger")
	callerIDKey = contextKey("callerID")
)
