package domain

// SessionState is the lifecycle state of the console session.
type SessionState string

const (
	StateAnonymous      SessionState = "anonymous"
	StateAuthenticating SessionState = "authenticating"
	StateAuthenticated  SessionState = "authenticated"
)

// Session is a point-in-time view of the authentication state.
// IsAuthenticated holds exactly when both User and Credential are set.
type Session struct {
	State           SessionState
	User            *User
	Credential      string
	IsLoading       bool
	IsAuthenticated bool
}

// Role returns the resolved role of the session user, or RoleEmployee
// when nobody is signed in.
func (s Session) Role() Role {
	if s.User == nil {
		return RoleEmployee
	}
	return s.User.Role
}
