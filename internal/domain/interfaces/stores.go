package interfaces

import (
	"context"
	"net/netip"
	"time"

	domaintypes "laptev/internal/domain/types"
)

// RecordingStore is the host's view of captured recordings. A recording is
// only listed once both its thumbnail and its video artifact exist.
type RecordingStore interface {
	List(ctx context.Context) ([]domaintypes.RecordingID, error)
	Thumbnail(ctx context.Context, id domaintypes.RecordingID) ([]byte, error)
	Video(ctx context.Context, id domaintypes.RecordingID) ([]byte, error)
	Remove(ctx context.Context, id domaintypes.RecordingID) error
	ExpireBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// PasswordBook resolves the pre-shared password the viewer uses for a host.
type PasswordBook interface {
	Password(host netip.Addr) ([]byte, bool)
}
