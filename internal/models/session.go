package models

// Session is the authenticated identity a request acts on behalf of.
type Session struct {
	UserID      string `json:"id"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// Valid reports whether the session identifies a collection.
func (s Session) Valid() bool {
	return s.UserID != ""
}
