package usecase

import (
	authdomain "mailminder-backend/internal/auth/domain"
	authdto "mailminder-backend/internal/auth/dto"
)

// AuthUsecase defines the interface for authentication and account linking
type AuthUsecase interface {
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	GoogleSignIn(idToken string) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(token string) (*authdomain.User, error)

	// LinkAccount connects a mailbox account whose credentials the poller
	// will use for monitors bound to its label
	LinkAccount(userID string, req *authdto.LinkAccountRequest) (*authdomain.EmailAccount, error)
	ListAccounts(userID string) ([]*authdomain.EmailAccount, error)
	UnlinkAccount(userID, label string) error
}
