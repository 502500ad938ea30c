package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	authdomain "mailminder-backend/internal/auth/domain"
	authdto "mailminder-backend/internal/auth/dto"
	"mailminder-backend/internal/auth/repository"
	"mailminder-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo?id_token="

// authUsecase implements AuthUsecase
type authUsecase struct {
	userRepo    repository.UserRepository
	accountRepo repository.AccountRepository
	config      *config.Config
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, accountRepo repository.AccountRepository, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		config:      cfg,
	}
}

func (u *authUsecase) Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("invalid email or password")
	}
	if user.Provider != "email" {
		return nil, errors.New("this account signs in with Google")
	}
	if !repository.CheckPasswordHash(req.Password, user.Password) {
		return nil, errors.New("invalid email or password")
	}
	return u.issueTokens(user)
}

func (u *authUsecase) Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error) {
	existing, err := u.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("email already registered")
	}

	hashed, err := repository.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &authdomain.User{
		Email:    req.Email,
		Password: hashed,
		Name:     req.Name,
		Provider: "email",
	}
	if err := u.userRepo.Create(user); err != nil {
		return nil, err
	}
	return u.issueTokens(user)
}

// googleClaims is the subset of Google's tokeninfo response this service
// reads. EmailVerified arrives as the string "true" or "false".
type googleClaims struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	EmailVerified string `json:"email_verified"`
}

// verifyGoogleIDToken validates an ID token against Google's tokeninfo
// endpoint and returns its claims
func verifyGoogleIDToken(idToken string) (*googleClaims, error) {
	resp, err := http.Get(googleTokenInfoURL + idToken)
	if err != nil {
		return nil, fmt.Errorf("google token verification failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("google rejected the token: %s", string(body))
	}

	var claims googleClaims
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, fmt.Errorf("google token info decode failed: %w", err)
	}
	if claims.EmailVerified != "true" {
		return nil, errors.New("google account email is not verified")
	}
	return &claims, nil
}

func (u *authUsecase) GoogleSignIn(idToken string) (*authdto.TokenResponse, error) {
	claims, err := verifyGoogleIDToken(idToken)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.FindByEmail(claims.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &authdomain.User{
			Email:     claims.Email,
			Name:      claims.Name,
			AvatarURL: claims.Picture,
			Provider:  "google",
		}
		if err := u.userRepo.Create(user); err != nil {
			return nil, err
		}
	} else {
		user.Name = claims.Name
		user.AvatarURL = claims.Picture
		if err := u.userRepo.Update(user); err != nil {
			return nil, err
		}
	}
	return u.issueTokens(user)
}

func (u *authUsecase) RefreshToken(refreshToken string) (*authdto.TokenResponse, error) {
	userID, err := u.parseUserID(refreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	// The token must also still be on record; logout revokes it even before
	// its signature expires
	stored, err := u.userRepo.FindRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("refresh token expired")
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}
	return u.issueTokens(user)
}

func (u *authUsecase) Logout(refreshToken string) error {
	return u.userRepo.DeleteRefreshToken(refreshToken)
}

func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.User, error) {
	userID, err := u.parseUserID(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (u *authUsecase) LinkAccount(userID string, req *authdto.LinkAccountRequest) (*authdomain.EmailAccount, error) {
	switch req.Provider {
	case "gmail":
		if req.RefreshToken == "" && req.AccessToken == "" {
			return nil, errors.New("gmail account requires OAuth tokens")
		}
	case "imap":
		if req.IMAPHost == "" || req.IMAPPassword == "" {
			return nil, errors.New("imap account requires host and password")
		}
	default:
		return nil, errors.New("unsupported account provider")
	}

	account := &authdomain.EmailAccount{
		UserID:       userID,
		Label:        req.Label,
		Address:      req.Address,
		Provider:     req.Provider,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		IMAPHost:     req.IMAPHost,
		SMTPHost:     req.SMTPHost,
		IMAPPassword: req.IMAPPassword,
	}
	if err := u.accountRepo.Upsert(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (u *authUsecase) ListAccounts(userID string) ([]*authdomain.EmailAccount, error) {
	return u.accountRepo.FindByUserID(userID)
}

func (u *authUsecase) UnlinkAccount(userID, label string) error {
	return u.accountRepo.Delete(userID, label)
}

// parseUserID verifies a token's signature and extracts the user_id claim
func (u *authUsecase) parseUserID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	return userID, nil
}

// issueTokens builds a fresh access/refresh pair and records the refresh
// token so it can be revoked
func (u *authUsecase) issueTokens(user *authdomain.User) (*authdto.TokenResponse, error) {
	now := time.Now()
	accessToken, err := u.signToken(jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     now.Add(u.config.JWTAccessExpiry).Unix(),
		"iat":     now.Unix(),
	})
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.signToken(jwt.MapClaims{
		"user_id":  user.ID,
		"token_id": uuid.New().String(),
		"exp":      now.Add(u.config.JWTRefreshExpiry).Unix(),
		"iat":      now.Unix(),
	})
	if err != nil {
		return nil, err
	}

	record := &authdomain.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: now.Add(u.config.JWTRefreshExpiry),
	}
	if err := u.userRepo.ReplaceRefreshToken(record); err != nil {
		return nil, err
	}

	return &authdto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.config.JWTAccessExpiry.Seconds()),
	}, nil
}

func (u *authUsecase) signToken(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(u.config.JWTSecret))
}
