// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

package account

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/apperr"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/blob"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/users/auth"
)

// # Test Doubles

// stubUserRepository holds a single mutable user, which is all these tests need.
type stubUserRepository struct {
	user *auth.User
}

func (repo *stubUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	if repo.user == nil || repo.user.ID != id {
		return nil, apperr.NotFound("User")
	}
	copied := *repo.user
	return &copied, nil
}

func (repo *stubUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	if repo.user != nil && repo.user.Email == email {
		copied := *repo.user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (repo *stubUserRepository) FindByUsername(_ context.Context, name string) (*auth.User, error) {
	if repo.user != nil && repo.user.Username == name {
		copied := *repo.user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (repo *stubUserRepository) Exists(_ context.Context, id string) (bool, error) {
	return repo.user != nil && repo.user.ID == id, nil
}

func (repo *stubUserRepository) Create(_ context.Context, user *auth.User) error {
	copied := *user
	repo.user = &copied
	return nil
}

func (repo *stubUserRepository) Update(_ context.Context, user *auth.User) error {
	if repo.user == nil || repo.user.ID != user.ID {
		return apperr.NotFound("User")
	}
	repo.user.FullName = user.FullName
	repo.user.Email = user.Email
	repo.user.AvatarURL = user.AvatarURL
	repo.user.CoverImageURL = user.CoverImageURL
	return nil
}

func (repo *stubUserRepository) UpdatePassword(context.Context, string, string) error  { return nil }
func (repo *stubUserRepository) SetRefreshToken(context.Context, string, string) error { return nil }
func (repo *stubUserRepository) ClearRefreshToken(context.Context, string) error       { return nil }
func (repo *stubUserRepository) RotateRefreshToken(context.Context, string, string, string) error {
	return nil
}

// stubBlobStore counts uploads and records delete attempts; deletes can be
// forced to fail to verify they stay non-fatal.
type stubBlobStore struct {
	uploads    int
	deleted    []string
	failDelete bool
}

func (store *stubBlobStore) Upload(_ context.Context, file *blob.File) (string, error) {
	store.uploads++
	return fmt.Sprintf("https://cdn.mytube.app/media/%d-%s", store.uploads, file.Name), nil
}

func (store *stubBlobStore) Delete(_ context.Context, key string) error {
	store.deleted = append(store.deleted, key)
	if store.failDelete {
		return fmt.Errorf("blob: simulated delete failure")
	}
	return nil
}

func (store *stubBlobStore) KeyFromURL(rawURL string) string {
	return strings.TrimPrefix(rawURL, "https://cdn.mytube.app/")
}

// # Fixtures

func newTestAccountService() (*Service, *stubUserRepository, *stubBlobStore) {
	repo := &stubUserRepository{
		user: &auth.User{
			ID:            "user-1",
			Username:      "alice",
			Email:         "alice@example.com",
			FullName:      "Alice Lidell",
			AvatarURL:     "https://cdn.mytube.app/media/old-avatar.png",
			CoverImageURL: "https://cdn.mytube.app/media/old-cover.jpg",
		},
	}
	blobs := &stubBlobStore{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, blobs, logger), repo, blobs
}

func imageFile(name string) *blob.File {
	return &blob.File{
		Name:        name,
		ContentType: "image/png",
		Size:        4,
		Content:     strings.NewReader("fake"),
	}
}

// # Profile Reads

func TestGetProfile(t *testing.T) {
	service, _, _ := newTestAccountService()

	user, err := service.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = service.GetProfile(context.Background(), "missing")
	assert.True(t, apperr.IsNotFound(err))
}

// # Detail Updates

func TestUpdateDetails(t *testing.T) {
	t.Run("replaces name and canonical email", func(t *testing.T) {
		service, repo, _ := newTestAccountService()

		user, err := service.UpdateDetails(context.Background(), "user-1", "Alice Cooper", "Alice.New@Example.COM")
		require.NoError(t, err)

		assert.Equal(t, "Alice Cooper", user.FullName)
		assert.Equal(t, "alice.new@example.com", user.Email)
		assert.Equal(t, "alice.new@example.com", repo.user.Email)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		service, _, _ := newTestAccountService()

		_, err := service.UpdateDetails(context.Background(), "missing", "Name", "mail@example.com")
		assert.True(t, apperr.IsNotFound(err))
	})
}

// # Media Updates

func TestUpdateAvatar(t *testing.T) {
	t.Run("uploads new image and deletes the old one", func(t *testing.T) {
		service, repo, blobs := newTestAccountService()

		user, err := service.UpdateAvatar(context.Background(), "user-1", imageFile("new-avatar.png"))
		require.NoError(t, err)

		assert.Contains(t, user.AvatarURL, "new-avatar.png")
		assert.Equal(t, user.AvatarURL, repo.user.AvatarURL)
		require.Len(t, blobs.deleted, 1)
		assert.Equal(t, "media/old-avatar.png", blobs.deleted[0])
	})

	t.Run("delete failure does not fail the update", func(t *testing.T) {
		service, repo, blobs := newTestAccountService()
		blobs.failDelete = true

		user, err := service.UpdateAvatar(context.Background(), "user-1", imageFile("new-avatar.png"))
		require.NoError(t, err)

		// The profile moved forward even though cleanup failed.
		assert.Contains(t, repo.user.AvatarURL, "new-avatar.png")
		assert.NotNil(t, user)
	})

	t.Run("missing file is a validation error", func(t *testing.T) {
		service, _, blobs := newTestAccountService()

		_, err := service.UpdateAvatar(context.Background(), "user-1", nil)

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "VALIDATION_ERROR", appError.Code)
		assert.Zero(t, blobs.uploads)
	})

	t.Run("no delete when there was no previous avatar", func(t *testing.T) {
		service, repo, blobs := newTestAccountService()
		repo.user.AvatarURL = ""

		_, err := service.UpdateAvatar(context.Background(), "user-1", imageFile("first-avatar.png"))
		require.NoError(t, err)
		assert.Empty(t, blobs.deleted)
	})
}

func TestUpdateCoverImage(t *testing.T) {
	t.Run("uploads new image and deletes the old one", func(t *testing.T) {
		service, repo, blobs := newTestAccountService()

		user, err := service.UpdateCoverImage(context.Background(), "user-1", imageFile("new-cover.jpg"))
		require.NoError(t, err)

		assert.Contains(t, user.CoverImageURL, "new-cover.jpg")
		assert.Equal(t, user.CoverImageURL, repo.user.CoverImageURL)
		require.Len(t, blobs.deleted, 1)
		assert.Equal(t, "media/old-cover.jpg", blobs.deleted[0])
	})

	t.Run("delete failure is non-fatal, matching avatar behavior", func(t *testing.T) {
		service, repo, blobs := newTestAccountService()
		blobs.failDelete = true

		_, err := service.UpdateCoverImage(context.Background(), "user-1", imageFile("new-cover.jpg"))
		require.NoError(t, err)
		assert.Contains(t, repo.user.CoverImageURL, "new-cover.jpg")
	})
}
