package dto

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

type GoogleSignInRequest struct {
	Token string `json:"token" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LinkAccountRequest connects a mailbox account to the user. Gmail accounts
// carry OAuth tokens from the client-side consent flow; IMAP accounts carry
// host and password credentials.
type LinkAccountRequest struct {
	Label        string `json:"label"`
	Address      string `json:"address" binding:"required,email"`
	Provider     string `json:"provider" binding:"required,oneof=gmail imap"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IMAPHost     string `json:"imap_host,omitempty"`
	SMTPHost     string `json:"smtp_host,omitempty"`
	IMAPPassword string `json:"imap_password,omitempty"`
}
