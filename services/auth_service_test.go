package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lbeckmann/team-registration/models"
	"github.com/lbeckmann/team-registration/repositories"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	nextID  int
	byID    map[int]models.User
	byEmail map[string]int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[int]models.User),
		byEmail: make(map[string]int),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[user.Email]; taken {
		return repositories.ErrUserEmailConflict
	}
	r.nextID++
	user.ID = r.nextID
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	user := r.byID[id]
	return &user, nil
}

func (r *fakeUserRepo) UpsertByProvider(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.byID {
		if existing.Provider == user.Provider &&
			existing.ProviderID != nil && user.ProviderID != nil &&
			*existing.ProviderID == *user.ProviderID {
			user.ID = id
			existing.FullName = user.FullName
			existing.Email = user.Email
			existing.AvatarURL = user.AvatarURL
			r.byID[id] = existing
			return nil
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *fakeUserRepo) UpdateAvatarKey(ctx context.Context, userID int, avatarKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.AvatarKey = avatarKey
	r.byID[userID] = user
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, nil, GoogleOAuthConfig{})

	user, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Pat Example",
		Email:    "pat@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.ProviderLocal, user.Provider)

	loggedIn, err := svc.Login(context.Background(), LoginInput{
		Email:    "pat@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Nil(t, loggedIn.PasswordHash)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), nil, GoogleOAuthConfig{})

	_, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Pat Example",
		Email:    "pat@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterRejectsTakenEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, nil, GoogleOAuthConfig{})

	input := RegisterInput{FullName: "Pat", Email: "pat@example.com", Password: "correct horse"}
	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), input)
	assert.ErrorIs(t, err, ErrAuthEmailTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, nil, GoogleOAuthConfig{})

	_, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Pat", Email: "pat@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginInput{Email: "pat@example.com", Password: "wrong horse"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}

func TestLoginRejectsOAuthOnlyIdentity(t *testing.T) {
	repo := newFakeUserRepo()
	providerID := "google-123"
	require.NoError(t, repo.UpsertByProvider(context.Background(), &models.User{
		Provider:   models.ProviderGoogle,
		ProviderID: &providerID,
		FullName:   "Pat",
		Email:      "pat@example.com",
	}))

	svc := NewAuthService(repo, nil, GoogleOAuthConfig{})

	_, err := svc.Login(context.Background(), LoginInput{Email: "pat@example.com", Password: "anything at all"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}

func TestGoogleAuthURLRequiresConfiguration(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), nil, GoogleOAuthConfig{})

	_, err := svc.GoogleAuthURL("state-token")
	assert.ErrorIs(t, err, ErrOAuthNotConfigured)

	configured := NewAuthService(newFakeUserRepo(), nil, GoogleOAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/auth/google/callback",
	})
	url, err := configured.GoogleAuthURL("state-token")
	require.NoError(t, err)
	assert.True(t, strings.Contains(url, "state=state-token"))
	assert.True(t, strings.Contains(url, "client-id"))
}

func TestCurrentSessionStripsPasswordHash(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, nil, GoogleOAuthConfig{})

	user, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Pat", Email: "pat@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	session, err := svc.CurrentSession(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Nil(t, session.PasswordHash)

	_, err = svc.CurrentSession(context.Background(), 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
