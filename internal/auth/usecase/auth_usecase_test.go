package usecase

import (
	"fmt"
	"testing"
	"time"

	authdomain "mailminder-backend/internal/auth/domain"
	authdto "mailminder-backend/internal/auth/dto"
	"mailminder-backend/pkg/config"
)

type fakeUserRepo struct {
	users   map[string]*authdomain.User // keyed by email
	refresh map[string]*authdomain.RefreshToken
	nextID  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   map[string]*authdomain.User{},
		refresh: map[string]*authdomain.RefreshToken{},
	}
}

func (f *fakeUserRepo) Create(user *authdomain.User) error {
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*authdomain.User, error) {
	return f.users[email], nil
}

func (f *fakeUserRepo) FindByID(id string) (*authdomain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(user *authdomain.User) error {
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) ReplaceRefreshToken(token *authdomain.RefreshToken) error {
	f.refresh[token.Token] = token
	return nil
}

func (f *fakeUserRepo) FindRefreshToken(token string) (*authdomain.RefreshToken, error) {
	return f.refresh[token], nil
}

func (f *fakeUserRepo) DeleteRefreshToken(token string) error {
	delete(f.refresh, token)
	return nil
}

type fakeAccountRepo struct {
	accounts map[string]*authdomain.EmailAccount // keyed by label
}

func (f *fakeAccountRepo) Upsert(a *authdomain.EmailAccount) error {
	f.accounts[a.Label] = a
	return nil
}

func (f *fakeAccountRepo) FindByLabel(userID, label string) (*authdomain.EmailAccount, error) {
	return f.accounts[label], nil
}

func (f *fakeAccountRepo) FindByUserID(userID string) ([]*authdomain.EmailAccount, error) {
	var out []*authdomain.EmailAccount
	for _, a := range f.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAccountRepo) UpdateTokens(userID, label, accessToken, refreshToken string, expiry *time.Time) error {
	return nil
}

func (f *fakeAccountRepo) Delete(userID, label string) error {
	delete(f.accounts, label)
	return nil
}

func newTestUsecase() (AuthUsecase, *fakeUserRepo, *fakeAccountRepo) {
	users := newFakeUserRepo()
	accounts := &fakeAccountRepo{accounts: map[string]*authdomain.EmailAccount{}}
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Minute,
		JWTRefreshExpiry: time.Hour,
	}
	return NewAuthUsecase(users, accounts, cfg), users, accounts
}

func TestRegisterAndLogin(t *testing.T) {
	uc, _, _ := newTestUsecase()

	tokens, err := uc.Register(&authdto.RegisterRequest{
		Email: "me@example.com", Password: "hunter22", Name: "Me",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("Register returned empty tokens")
	}

	if _, err := uc.Login(&authdto.LoginRequest{Email: "me@example.com", Password: "hunter22"}); err != nil {
		t.Errorf("Login with correct password: %v", err)
	}
	if _, err := uc.Login(&authdto.LoginRequest{Email: "me@example.com", Password: "wrong"}); err == nil {
		t.Error("Login with wrong password should fail")
	}
	if _, err := uc.Register(&authdto.RegisterRequest{Email: "me@example.com", Password: "hunter22", Name: "Me"}); err == nil {
		t.Error("duplicate registration should fail")
	}
}

func TestValidateTokenRoundTrip(t *testing.T) {
	uc, _, _ := newTestUsecase()

	tokens, err := uc.Register(&authdto.RegisterRequest{
		Email: "me@example.com", Password: "hunter22", Name: "Me",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := uc.ValidateToken(tokens.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if user.Email != "me@example.com" {
		t.Errorf("validated user email = %q", user.Email)
	}

	if _, err := uc.ValidateToken("not-a-token"); err == nil {
		t.Error("garbage token should not validate")
	}
}

func TestRefreshTokenRotationAndLogout(t *testing.T) {
	uc, _, _ := newTestUsecase()

	tokens, err := uc.Register(&authdto.RegisterRequest{
		Email: "me@example.com", Password: "hunter22", Name: "Me",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	fresh, err := uc.RefreshToken(tokens.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if fresh.AccessToken == "" {
		t.Error("refresh returned empty access token")
	}

	// Logout revokes the refresh token even though its signature is valid
	if err := uc.Logout(fresh.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := uc.RefreshToken(fresh.RefreshToken); err == nil {
		t.Error("revoked refresh token should be rejected")
	}
}

func TestLinkAccountValidation(t *testing.T) {
	uc, _, accounts := newTestUsecase()

	if _, err := uc.LinkAccount("user-1", &authdto.LinkAccountRequest{
		Address: "work@example.com", Provider: "imap",
	}); err == nil {
		t.Error("imap account without host/password should fail")
	}
	if _, err := uc.LinkAccount("user-1", &authdto.LinkAccountRequest{
		Address: "work@example.com", Provider: "gmail",
	}); err == nil {
		t.Error("gmail account without tokens should fail")
	}
	if _, err := uc.LinkAccount("user-1", &authdto.LinkAccountRequest{
		Address: "work@example.com", Provider: "pop3",
	}); err == nil {
		t.Error("unknown provider should fail")
	}

	account, err := uc.LinkAccount("user-1", &authdto.LinkAccountRequest{
		Label:        "work",
		Address:      "work@example.com",
		Provider:     "imap",
		IMAPHost:     "imap.example.com:993",
		SMTPHost:     "smtp.example.com:587",
		IMAPPassword: "app-password",
	})
	if err != nil {
		t.Fatalf("LinkAccount: %v", err)
	}
	if account.UserID != "user-1" {
		t.Errorf("account UserID = %q", account.UserID)
	}
	if stored := accounts.accounts["work"]; stored == nil {
		t.Error("linked account was not persisted")
	}
}
