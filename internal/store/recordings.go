package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"laptev/internal/domain"
)

// Artifact file extensions.
const (
	ThumbnailExt = ".jpg"
	VideoExt     = ".h264"
)

// RecordingFileStore implements domain.RecordingStore over a directory.
type RecordingFileStore struct {
	dir string
}

var _ domain.RecordingStore = (*RecordingFileStore)(nil)

func NewRecordingFileStore(dir string) *RecordingFileStore {
	return &RecordingFileStore{dir: dir}
}

// Dir returns the backing directory.
func (s *RecordingFileStore) Dir() string { return s.dir }

func (s *RecordingFileStore) path(id domain.RecordingID, ext string) string {
	return filepath.Join(s.dir, id.String()+ext)
}

// scan groups the directory entries by recording id. Names that are not
// <decimal id><known ext> are ignored.
func (s *RecordingFileStore) scan() (thumbs, videos map[domain.RecordingID]bool, err error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	thumbs = make(map[domain.RecordingID]bool)
	videos = make(map[domain.RecordingID]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		id, err := domain.ParseRecordingID(strings.TrimSuffix(name, ext))
		if err != nil {
			continue
		}
		switch ext {
		case ThumbnailExt:
			thumbs[id] = true
		case VideoExt:
			videos[id] = true
		}
	}
	return thumbs, videos, nil
}

// List returns, in ascending order, the ids whose thumbnail and video both
// exist. A missing directory is an empty store.
func (s *RecordingFileStore) List(ctx context.Context) ([]domain.RecordingID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	thumbs, videos, err := s.scan()
	if err != nil {
		return nil, fmt.Errorf("store: listing %s: %w", s.dir, err)
	}
	ids := make([]domain.RecordingID, 0, len(thumbs))
	for id := range thumbs {
		if videos[id] {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *RecordingFileStore) read(ctx context.Context, id domain.RecordingID, ext string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path(id, ext))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("store: %s%s: %w", id, ext, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: reading %s%s: %w", id, ext, err)
	}
	return b, nil
}

// Thumbnail returns the thumbnail bytes for id.
func (s *RecordingFileStore) Thumbnail(ctx context.Context, id domain.RecordingID) ([]byte, error) {
	return s.read(ctx, id, ThumbnailExt)
}

// Video returns the video bytes for id.
func (s *RecordingFileStore) Video(ctx context.Context, id domain.RecordingID) ([]byte, error) {
	return s.read(ctx, id, VideoExt)
}

// Remove deletes both artifacts of id. Both removals are always attempted;
// a missing half is reported as domain.ErrNotFound alongside any other
// failure. Nothing is restored on partial failure.
func (s *RecordingFileStore) Remove(ctx context.Context, id domain.RecordingID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var errs []error
	for _, ext := range []string{ThumbnailExt, VideoExt} {
		err := os.Remove(s.path(id, ext))
		switch {
		case err == nil:
		case errors.Is(err, os.ErrNotExist):
			errs = append(errs, fmt.Errorf("store: %s%s: %w", id, ext, domain.ErrNotFound))
		default:
			errs = append(errs, fmt.Errorf("store: removing %s%s: %w", id, ext, err))
		}
	}
	return errors.Join(errs...)
}

// ExpireBefore removes every artifact whose recording started before cutoff
// and returns the number of recordings affected. Files that vanish
// concurrently are ignored.
func (s *RecordingFileStore) ExpireBefore(ctx context.Context, cutoff time.Time) (int, error) {
	thumbs, videos, err := s.scan()
	if err != nil {
		return 0, fmt.Errorf("store: listing %s: %w", s.dir, err)
	}
	stale := make(map[domain.RecordingID]struct{})
	for _, m := range []map[domain.RecordingID]bool{thumbs, videos} {
		for id := range m {
			if id.Time().Before(cutoff) {
				stale[id] = struct{}{}
			}
		}
	}

	n := 0
	var errs []error
	for id := range stale {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		removed := false
		for _, ext := range []string{ThumbnailExt, VideoExt} {
			err := os.Remove(s.path(id, ext))
			switch {
			case err == nil:
				removed = true
			case errors.Is(err, os.ErrNotExist):
			default:
				errs = append(errs, err)
			}
		}
		if removed {
			n++
		}
	}
	return n, errors.Join(errs...)
}

// Put stores a recording. The video is written first so the pair only
// becomes listable once both halves are complete.
func (s *RecordingFileStore) Put(ctx context.Context, id domain.RecordingID, thumbnail, video []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("store: creating %s: %w", s.dir, err)
	}
	if err := WriteFileAtomic(s.path(id, VideoExt), video, 0o600); err != nil {
		return fmt.Errorf("store: writing %s%s: %w", id, VideoExt, err)
	}
	if err := WriteFileAtomic(s.path(id, ThumbnailExt), thumbnail, 0o600); err != nil {
		return fmt.Errorf("store: writing %s%s: %w", id, ThumbnailExt, err)
	}
	return nil
}
