package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/lbeckmann/team-registration/models"
	"github.com/lbeckmann/team-registration/realtime"
	"github.com/lbeckmann/team-registration/repositories"
)

const minPasswordLength = 8

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// AuthService owns the session lifecycle: OAuth redirect sign-in, local
// credentials, current-session lookup and sign-out. Every state change is
// broadcast to the user's auth room so subscribed clients can react.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	GoogleAuthURL(state string) (string, error)
	CompleteGoogleSignIn(ctx context.Context, code string) (*models.User, error)
	CurrentSession(ctx context.Context, userID int) (*models.User, error)
	SignOut(ctx context.Context, userID int) error
}

type RegisterInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleOAuthConfig carries the client credentials for the sign-in redirect
// flow. Zero values leave OAuth disabled (local credentials still work).
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type authService struct {
	userRepo repositories.UserRepository
	hub      *realtime.Hub
	oauth    *oauth2.Config
}

func NewAuthService(userRepo repositories.UserRepository, hub *realtime.Hub, cfg GoogleOAuthConfig) AuthService {
	s := &authService{
		userRepo: userRepo,
		hub:      hub,
	}
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		s.oauth = &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return s
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hash := string(hashedPassword)

	user := &models.User{
		Provider:     models.ProviderLocal,
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: &hash,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrAuthEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.notifyAuthChange(user, "signed_in")
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if user.PasswordHash == nil {
		// OAuth-only identity, no local password to check.
		return nil, ErrAuthInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = nil
	s.notifyAuthChange(user, "signed_in")
	return user, nil
}

func (s *authService) GoogleAuthURL(state string) (string, error) {
	if s.oauth == nil {
		return "", ErrOAuthNotConfigured
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *authService) CompleteGoogleSignIn(ctx context.Context, code string) (*models.User, error) {
	if s.oauth == nil {
		return nil, ErrOAuthNotConfigured
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOAuthExchangeFailed, err)
	}

	info, err := s.fetchGoogleUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Provider:   models.ProviderGoogle,
		ProviderID: &info.ID,
		FullName:   info.Name,
		Email:      info.Email,
	}
	if info.Picture != "" {
		user.AvatarURL = &info.Picture
	}

	// First sign-in creates the identity, later ones refresh the profile.
	if err := s.userRepo.UpsertByProvider(ctx, user); err != nil {
		return nil, err
	}

	s.notifyAuthChange(user, "signed_in")
	return user, nil
}

func (s *authService) fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := s.oauth.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch google user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info request returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode google user info: %w", err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, fmt.Errorf("google user info is missing id or email")
	}
	return &info, nil
}

func (s *authService) CurrentSession(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = nil
	return user, nil
}

// SignOut invalidates nothing server-side (tokens are stateless and simply
// expire); its job is telling every subscribed client of this user that the
// session ended, so downstream state gets cleared.
func (s *authService) SignOut(ctx context.Context, userID int) error {
	if s.hub == nil {
		return nil
	}
	s.hub.BroadcastToRoom(userRoom(userID), realtime.EventAuthChanged, map[string]interface{}{
		"status":  "signed_out",
		"user_id": userID,
	})
	return nil
}

func (s *authService) notifyAuthChange(user *models.User, status string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(userRoom(user.ID), realtime.EventAuthChanged, map[string]interface{}{
		"status": status,
		"user":   user,
	})
}

func userRoom(userID int) string {
	return fmt.Sprintf("user_%d", userID)
}
