package identity

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/shopcore/identity/internal/accounts"
	"github.com/shopcore/identity/internal/blob"
	"github.com/shopcore/identity/internal/common"
)

// AvatarUpload is an avatar image arriving with a profile update. Size and
// MIME checks happen at the transport before the bytes get here.
type AvatarUpload struct {
	Content     io.Reader
	ContentType string
}

// ProfileUpdate carries a partial profile change; nil fields stay untouched.
type ProfileUpdate struct {
	Name        *string
	PhoneNumber *string
	Address     *string
	Avatar      *AvatarUpload
}

// Profile returns the live account row.
func (s *Service) Profile(ctx context.Context, accountID string) (*accounts.Account, error) {
	acc, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, s.internal(ctx, "profile", err)
	}
	return acc, nil
}

// UpdateProfile applies a partial profile update, storing a new avatar blob
// first when one was uploaded. An empty update returns the account unchanged.
func (s *Service) UpdateProfile(ctx context.Context, accountID string, in ProfileUpdate) (*accounts.Account, error) {
	fields := map[string]any{}
	if in.Name != nil {
		fields["Name"] = *in.Name
	}
	if in.PhoneNumber != nil {
		fields["PhoneNumber"] = *in.PhoneNumber
	}
	if in.Address != nil {
		fields["Address"] = *in.Address
	}

	var oldAvatar string
	if in.Avatar != nil {
		acc, err := s.store.FindByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, common.ErrNotFound
			}
			return nil, s.internal(ctx, "update profile", err)
		}
		oldAvatar = acc.AvatarURL

		url, err := s.blobs.Put(ctx, blob.AvatarKey(), in.Avatar.ContentType, in.Avatar.Content)
		if err != nil {
			return nil, s.internal(ctx, "update profile", err)
		}
		fields["AvatarURL"] = url
	}

	acc, err := s.store.Update(ctx, accountID, fields)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, s.internal(ctx, "update profile", err)
	}

	if oldAvatar != "" {
		s.releaseBlob(oldAvatar)
	}

	return acc, nil
}

// Delete removes the account and schedules a best-effort release of the
// avatar blob. Blob failures are logged and never surfaced: the deletion has
// already succeeded.
func (s *Service) Delete(ctx context.Context, accountID string) error {
	acc, err := s.store.Delete(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return s.internal(ctx, "delete account", err)
	}

	if acc.AvatarURL != "" {
		s.releaseBlob(acc.AvatarURL)
	}

	return nil
}

// ListAccounts is the admin listing over the users relation; the total count
// ignores paging so callers can compute page counts.
func (s *Service) ListAccounts(ctx context.Context, filter map[string]any, page *accounts.Page) ([]*accounts.Account, int, error) {
	rows, total, err := s.store.FindMany(ctx, filter, page)
	if err != nil {
		return nil, 0, s.internal(ctx, "list accounts", err)
	}
	return rows, total, nil
}

// releaseBlob deletes an orphaned blob on its own goroutine, detached from
// the request that orphaned it.
func (s *Service) releaseBlob(url string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.blobs.Delete(ctx, url); err != nil {
			s.log.Warn(ctx, "blob release failed", "url", url, "err", err)
		}
	}()
}
