package constants

// Role carried in access tokens
const (
	ROLE_ADMIN = "ADMIN"
)

// Context keys set by the auth middleware
const (
	CTX_USER_EMAIL = "user_email"
	CTX_USER_ROLE  = "user_role"
	CTX_REQUEST_ID = "request_id"
)
