// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/apperr"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/blob"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/sec"
)

// # Test Doubles

// fakeUserRepository is an in-memory UserRepository for service-level tests.
type fakeUserRepository struct {
	mu    sync.Mutex
	users map[string]*User // keyed by ID
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*User)}
}

func (repo *fakeUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, user := range repo.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUserRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, user := range repo.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUserRepository) Exists(_ context.Context, id string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	_, ok := repo.users[id]
	return ok, nil
}

func (repo *fakeUserRepository) Create(_ context.Context, user *User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, existing := range repo.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apperr.Conflict("User with email or username already exists")
		}
	}
	copied := *user
	repo.users[user.ID] = &copied
	return nil
}

func (repo *fakeUserRepository) Update(_ context.Context, user *User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	stored, ok := repo.users[user.ID]
	if !ok {
		return apperr.NotFound("User")
	}
	stored.FullName = user.FullName
	stored.Email = user.Email
	stored.AvatarURL = user.AvatarURL
	stored.CoverImageURL = user.CoverImageURL
	return nil
}

func (repo *fakeUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if stored, ok := repo.users[userID]; ok {
		stored.PasswordHash = newHash
	}
	return nil
}

func (repo *fakeUserRepository) SetRefreshToken(_ context.Context, userID, token string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if stored, ok := repo.users[userID]; ok {
		stored.RefreshTokenSlot = token
	}
	return nil
}

func (repo *fakeUserRepository) RotateRefreshToken(_ context.Context, userID, presentedToken, newToken string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	stored, ok := repo.users[userID]
	if !ok || stored.RefreshTokenSlot != presentedToken {
		return ErrRefreshTokenMismatch
	}
	stored.RefreshTokenSlot = newToken
	return nil
}

func (repo *fakeUserRepository) ClearRefreshToken(_ context.Context, userID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if stored, ok := repo.users[userID]; ok {
		stored.RefreshTokenSlot = ""
	}
	return nil
}

// fakeBlobStore records uploads and deletes without touching the network.
type fakeBlobStore struct {
	mu       sync.Mutex
	uploads  int
	deleted  []string
	failNext bool
}

func (store *fakeBlobStore) Upload(_ context.Context, file *blob.File) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.failNext {
		store.failNext = false
		return "", fmt.Errorf("blob: simulated upload failure")
	}
	store.uploads++
	return fmt.Sprintf("https://cdn.mytube.app/media/%d-%s", store.uploads, file.Name), nil
}

func (store *fakeBlobStore) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.deleted = append(store.deleted, key)
	return nil
}

func (store *fakeBlobStore) KeyFromURL(rawURL string) string {
	return strings.TrimPrefix(rawURL, "https://cdn.mytube.app/")
}

// # Fixtures

func newTestTokenService(t *testing.T) *sec.TokenService {
	t.Helper()
	tokenService, err := sec.NewTokenService(
		"access-secret-for-tests",
		"refresh-secret-for-tests",
		15*time.Minute,
		720*time.Hour,
		"mytube.app",
	)
	require.NoError(t, err)
	return tokenService
}

func newTestService(t *testing.T) (*Service, *fakeUserRepository, *fakeBlobStore) {
	t.Helper()
	repo := newFakeUserRepository()
	blobs := &fakeBlobStore{}
	return NewService(repo, blobs, newTestTokenService(t)), repo, blobs
}

func avatarFile() *blob.File {
	return &blob.File{
		Name:        "avatar.png",
		ContentType: "image/png",
		Size:        4,
		Content:     strings.NewReader("fake"),
	}
}

func registerAlice(t *testing.T, service *Service) *User {
	t.Helper()
	user, err := service.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
		FullName: "Alice Lidell",
		Avatar:   avatarFile(),
	})
	require.NoError(t, err)
	return user
}

// # Registration

func TestRegister(t *testing.T) {
	t.Run("creates account with required avatar", func(t *testing.T) {
		service, _, blobs := newTestService(t)

		user := registerAlice(t, service)

		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEmpty(t, user.AvatarURL)
		assert.Empty(t, user.CoverImageURL)
		assert.Equal(t, 1, blobs.uploads)

		// The stored hash must never be the plain password.
		assert.NotEqual(t, "correct-horse", user.PasswordHash)
		assert.True(t, sec.CheckPasswordHash("correct-horse", user.PasswordHash))
	})

	t.Run("canonicalizes username and email", func(t *testing.T) {
		service, repo, _ := newTestService(t)

		user, err := service.Register(context.Background(), RegisterInput{
			Username: "  BoB  ",
			Email:    "Bob@Example.COM",
			Password: "correct-horse",
			FullName: "Bob Builder",
			Avatar:   avatarFile(),
		})
		require.NoError(t, err)

		assert.Equal(t, "bob", user.Username)
		assert.Equal(t, "bob@example.com", user.Email)

		// The canonical form is what lookups resolve.
		found, err := repo.FindByUsername(context.Background(), "bob")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("uploads cover image when provided", func(t *testing.T) {
		service, _, blobs := newTestService(t)

		user, err := service.Register(context.Background(), RegisterInput{
			Username:   "carol",
			Email:      "carol@example.com",
			Password:   "correct-horse",
			FullName:   "Carol Danvers",
			Avatar:     avatarFile(),
			CoverImage: &blob.File{Name: "cover.jpg", ContentType: "image/jpeg", Size: 4, Content: strings.NewReader("fake")},
		})
		require.NoError(t, err)

		assert.NotEmpty(t, user.CoverImageURL)
		assert.Equal(t, 2, blobs.uploads)
	})

	t.Run("rejects a malformed username shape", func(t *testing.T) {
		service, _, blobs := newTestService(t)

		for _, name := range []string{"ab", "has spaces", "wave/emoji", strings.Repeat("x", 31)} {
			_, err := service.Register(context.Background(), RegisterInput{
				Username: name,
				Email:    "shape@example.com",
				Password: "correct-horse",
				FullName: "Shape Tester",
				Avatar:   avatarFile(),
			})

			appError := apperr.As(err)
			require.NotNil(t, appError, "username %q must be rejected", name)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
		}
		assert.Equal(t, 0, blobs.uploads)
	})

	t.Run("rejects missing avatar", func(t *testing.T) {
		service, _, blobs := newTestService(t)

		_, err := service.Register(context.Background(), RegisterInput{
			Username: "dave",
			Email:    "dave@example.com",
			Password: "correct-horse",
			FullName: "Dave Grohl",
		})

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "VALIDATION_ERROR", appError.Code)
		assert.Equal(t, 0, blobs.uploads)
	})

	t.Run("conflict check runs before any upload", func(t *testing.T) {
		service, _, blobs := newTestService(t)
		registerAlice(t, service)
		uploadsAfterFirst := blobs.uploads

		_, err := service.Register(context.Background(), RegisterInput{
			Username: "alice",
			Email:    "other@example.com",
			Password: "correct-horse",
			FullName: "Alice Impostor",
			Avatar:   avatarFile(),
		})

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "CONFLICT", appError.Code)
		assert.Equal(t, uploadsAfterFirst, blobs.uploads, "no media should be uploaded for a duplicate identity")
	})

	t.Run("duplicate email detected case-insensitively", func(t *testing.T) {
		service, _, _ := newTestService(t)
		registerAlice(t, service)

		_, err := service.Register(context.Background(), RegisterInput{
			Username: "alice2",
			Email:    "ALICE@example.com",
			Password: "correct-horse",
			FullName: "Alice Again",
			Avatar:   avatarFile(),
		})

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "CONFLICT", appError.Code)
	})

	t.Run("avatar upload failure surfaces as upload error", func(t *testing.T) {
		service, _, blobs := newTestService(t)
		blobs.failNext = true

		_, err := service.Register(context.Background(), RegisterInput{
			Username: "erin",
			Email:    "erin@example.com",
			Password: "correct-horse",
			FullName: "Erin Hunter",
			Avatar:   avatarFile(),
		})

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "UPLOAD_FAILED", appError.Code)
	})
}

// # Login

func TestLogin(t *testing.T) {
	t.Run("issues token pair and fills slot", func(t *testing.T) {
		service, repo, _ := newTestService(t)
		user := registerAlice(t, service)

		pair, err := service.Login(context.Background(), LoginInput{
			Username: "alice",
			Password: "correct-horse",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, user.ID, pair.User.ID)

		stored, err := repo.FindByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, pair.RefreshToken, stored.RefreshTokenSlot)
	})

	t.Run("accepts email as identifier", func(t *testing.T) {
		service, _, _ := newTestService(t)
		registerAlice(t, service)

		pair, err := service.Login(context.Background(), LoginInput{
			Email:    "Alice@Example.com",
			Password: "correct-horse",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice", pair.User.Username)
	})

	t.Run("requires an identifier", func(t *testing.T) {
		service, _, _ := newTestService(t)

		_, err := service.Login(context.Background(), LoginInput{Password: "whatever"})

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		service, _, _ := newTestService(t)

		_, err := service.Login(context.Background(), LoginInput{
			Username: "nobody",
			Password: "whatever",
		})

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "NOT_FOUND", appError.Code)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		service, _, _ := newTestService(t)
		registerAlice(t, service)

		_, err := service.Login(context.Background(), LoginInput{
			Username: "alice",
			Password: "wrong-horse",
		})

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
	})

	t.Run("second login replaces the previous session", func(t *testing.T) {
		service, _, _ := newTestService(t)
		registerAlice(t, service)

		first, err := service.Login(context.Background(), LoginInput{Username: "alice", Password: "correct-horse"})
		require.NoError(t, err)

		_, err = service.Login(context.Background(), LoginInput{Username: "alice", Password: "correct-horse"})
		require.NoError(t, err)

		// The first refresh token is no longer in the slot.
		_, err = service.RefreshTokens(context.Background(), first.RefreshToken)
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
		assert.Equal(t, "Refresh token is expired or used", appError.Message)
	})
}

// # Token Rotation

func TestRefreshTokens(t *testing.T) {
	t.Run("rotates the pair and invalidates the old token", func(t *testing.T) {
		service, repo, _ := newTestService(t)
		user := registerAlice(t, service)

		login, err := service.Login(context.Background(), LoginInput{Username: "alice", Password: "correct-horse"})
		require.NoError(t, err)

		rotated, err := service.RefreshTokens(context.Background(), login.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

		stored, err := repo.FindByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, rotated.RefreshToken, stored.RefreshTokenSlot)

		// Replaying the consumed token is rejected.
		_, err = service.RefreshTokens(context.Background(), login.RefreshToken)
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "Refresh token is expired or used", appError.Message)
	})

	t.Run("rotated token chain stays usable", func(t *testing.T) {
		service, _, _ := newTestService(t)
		registerAlice(t, service)

		login, err := service.Login(context.Background(), LoginInput{Username: "alice", Password: "correct-horse"})
		require.NoError(t, err)

		current := login.RefreshToken
		for i := 0; i < 3; i++ {
			rotated, err := service.RefreshTokens(context.Background(), current)
			require.NoError(t, err, "rotation %d should succeed", i)
			current = rotated.RefreshToken
		}
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		service, _, _ := newTestService(t)

		_, err := service.RefreshTokens(context.Background(), "not-a-jwt")

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
	})

	t.Run("token signed with the access secret is rejected", func(t *testing.T) {
		service, _, _ := newTestService(t)
		registerAlice(t, service)

		login, err := service.Login(context.Background(), LoginInput{Username: "alice", Password: "correct-horse"})
		require.NoError(t, err)

		// An access token must never pass refresh verification.
		_, err = service.RefreshTokens(context.Background(), login.AccessToken)
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
	})
}

// # Logout

func TestLogout(t *testing.T) {
	t.Run("clears the slot and kills the session", func(t *testing.T) {
		service, repo, _ := newTestService(t)
		user := registerAlice(t, service)

		login, err := service.Login(context.Background(), LoginInput{Username: "alice", Password: "correct-horse"})
		require.NoError(t, err)

		require.NoError(t, service.Logout(context.Background(), user.ID))

		stored, err := repo.FindByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.RefreshTokenSlot)

		// A refresh with the pre-logout token must fail.
		_, err = service.RefreshTokens(context.Background(), login.RefreshToken)
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "Refresh token is expired or used", appError.Message)
	})

	t.Run("is idempotent", func(t *testing.T) {
		service, _, _ := newTestService(t)
		user := registerAlice(t, service)

		require.NoError(t, service.Logout(context.Background(), user.ID))
		require.NoError(t, service.Logout(context.Background(), user.ID))
	})
}

// # Password Changes

func TestChangePassword(t *testing.T) {
	t.Run("replaces the hash after verifying the old password", func(t *testing.T) {
		service, _, _ := newTestService(t)
		user := registerAlice(t, service)

		err := service.ChangePassword(context.Background(), user.ID, "correct-horse", "battery-staple")
		require.NoError(t, err)

		// Old password no longer works, new one does.
		_, err = service.Login(context.Background(), LoginInput{Username: "alice", Password: "correct-horse"})
		assert.Error(t, err)

		_, err = service.Login(context.Background(), LoginInput{Username: "alice", Password: "battery-staple"})
		assert.NoError(t, err)
	})

	t.Run("rejects a wrong old password as unauthorized", func(t *testing.T) {
		service, _, _ := newTestService(t)
		user := registerAlice(t, service)

		err := service.ChangePassword(context.Background(), user.ID, "wrong-horse", "battery-staple")

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
		assert.Equal(t, 401, appError.HTTPStatus)
		assert.Equal(t, "Invalid old password", appError.Message)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		service, _, _ := newTestService(t)

		err := service.ChangePassword(context.Background(), "missing-id", "a", "b")
		assert.True(t, apperr.IsNotFound(err))
	})
}
