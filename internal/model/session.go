package model

// DefaultDisplayName is used when no first name is stored.
const DefaultDisplayName = "User"

// Session identifies the signed-in user on this device.
type Session struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"first_name"`
}

// Greeting returns the name shown on the home screen.
func (s *Session) Greeting() string {
	if s == nil || s.DisplayName == "" {
		return DefaultDisplayName
	}
	return s.DisplayName
}

// Credentials are the inputs of an email/username login.
type Credentials struct {
	EmailOrUsername string `json:"email_or_username"`
	Password        string `json:"password"`
}

// Registration is the body of POST /register/.
type Registration struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SocialProfile is what an identity provider hands back, forwarded to /social-login.
type SocialProfile struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthResult is the success shape of every auth endpoint.
type AuthResult struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// Session converts the result into a device session.
func (r AuthResult) Session() Session {
	return Session{UserID: r.UserID, Username: r.Username, DisplayName: r.FirstName}
}
