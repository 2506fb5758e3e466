package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"laptev/internal/domain"
)

func recs(n int) []domain.Recording {
	out := make([]domain.Recording, n)
	for i := range out {
		out[i] = domain.Recording{ID: domain.RecordingID(1000 - i)}
	}
	return out
}

func TestPage(t *testing.T) {
	all := recs(7)

	p, pages := Page(all, 1, 3)
	assert.Equal(t, 3, pages)
	assert.Equal(t, all[:3], p)

	p, _ = Page(all, 3, 3)
	assert.Equal(t, all[6:], p)

	p, _ = Page(all, 4, 3)
	assert.Empty(t, p)

	p, pages = Page(all, 1, 0)
	assert.Equal(t, 1, pages)
	assert.Len(t, p, 7)

	p, pages = Page(nil, 1, 25)
	assert.Zero(t, pages)
	assert.Empty(t, p)
}

func TestRenderRecordings(t *testing.T) {
	loc := time.FixedZone("UTC+02:00", 2*3600)
	out := RenderRecordings([]domain.Recording{{ID: 1700000000, Thumbnail: make([]byte, 12)}}, 1, 1, loc)
	assert.Contains(t, out, "1700000000")
	assert.Contains(t, out, "2023-11-15 00:13:20 UTC+02:00")
	assert.Contains(t, out, "12 bytes")
	assert.Contains(t, out, "page 1 of 1")
}

func TestIsUsageError(t *testing.T) {
	assert.True(t, IsUsageError(errors.New("unknown flag: --nope")))
	assert.True(t, IsUsageError(errors.New("accepts 1 arg(s), received 0")))
	assert.False(t, IsUsageError(domain.ErrAuthenticationFailed))
}

func TestIsUsageError_HostsAdd(t *testing.T) {
	assert.True(t, IsUsageError(errors.New("exactly one of --password-base64 or --password-file is required")))
}
