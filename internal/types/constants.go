package types

const (
	ContextUserKey   = "user"
	ContextCaseKey   = "case"
	ContextTokenKey  = "token"
	ContextLoggerKey = "logger"
)
