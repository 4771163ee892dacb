package security

// Cookie names shared by handlers (which set them) and middleware (which
// read them). The refresh cookie is scoped to the auth subtree so it is
// only ever sent to the refresh/logout endpoints.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	AdminSessionCookie = "admin_session"

	RefreshCookiePath = "/api/v1/auth"
)
