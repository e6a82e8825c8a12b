// Package blob is the object-storage collaborator: store bytes under a key,
// get back a public URL, and release the object later. The identity engine
// uses it for avatar images only.
package blob

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

type Store interface {
	// Put stores the object and returns its public URL.
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)

	// Delete releases the object a previously returned URL points at.
	Delete(ctx context.Context, publicURL string) error
}

// AvatarKey generates a fresh storage key partitioned by upload date.
func AvatarKey() string {
	d := time.Now()
	return fmt.Sprintf("avatars/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}
