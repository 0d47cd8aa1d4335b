package model

// Session is the pair of bearer token and user snapshot held by the
// session store. Token and user are set and cleared together.
type Session struct {
	Token string `json:"token,omitempty"`
	User  *User  `json:"user,omitempty"`
}

// Active reports whether the session represents a logged-in user.
func (s Session) Active() bool {
	return s.Token != "" && s.User != nil
}

// UserID returns the current user's id, or "" when logged out.
func (s Session) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}
