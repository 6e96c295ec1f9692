package constants

// Context keys shared between middleware and handlers
const (
	ContextKeyUserID    = "user_id"
	ContextKeyPrincipal = "principal"
)

// Validation limits
const (
	MinPasswordLength = 6

	MaxTaskTitleLength       = 100
	MaxTaskDescriptionLength = 500
	MaxTeamNameLength        = 50
	MaxTeamDescriptionLength = 200
)

// Pagination defaults
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
