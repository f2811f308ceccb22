// Package attach implements the attachment service: persisting
// uploaded audio to blob storage, registering it as a durable media
// record, and associating it with the comment it belongs to.
package attach

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bakry/voice-comments/internal/datalayer"
	"github.com/bakry/voice-comments/internal/generator"
	"github.com/bakry/voice-comments/internal/repository"
)

// MetaKeyAudioAttachment is the comment-meta key holding the
// associated attachment id.
const MetaKeyAudioAttachment = "wvc_audio_attachment_id"

// Ref identifies one uploaded audio object. The id is the handle the
// browser carries through the comment form; the URL is retrievable.
type Ref struct {
	ID  int64
	URL string
}

// Upload is one incoming audio file.
type Upload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

// StorageError reports a blob storage failure during upload. The
// underlying storage message is preserved for the client.
type StorageError struct {
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to store audio under %s: %v", e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

var _ error = (*StorageError)(nil)

// CreateError reports that the media record could not be created after
// the file was already stored.
type CreateError struct {
	Err error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("failed to create attachment record: %v", e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }

var _ error = (*CreateError)(nil)

type Service struct {
	blobs       datalayer.BlobStorage
	attachments repository.AttachmentStore
	meta        repository.CommentMetaStore
	keys        *generator.StorageKeyGenerator
}

func NewService(
	blobs datalayer.BlobStorage,
	attachments repository.AttachmentStore,
	meta repository.CommentMetaStore,
) *Service {
	return &Service{
		blobs:       blobs,
		attachments: attachments,
		meta:        meta,
		keys:        &generator.StorageKeyGenerator{Prefix: "voice"},
	}
}

// Upload persists the audio bytes and registers the attachment.
// Derived metadata generation is best-effort and never fails the call.
func (s *Service) Upload(ctx context.Context, upload Upload) (Ref, error) {
	data, err := io.ReadAll(upload.Data)
	if err != nil {
		return Ref{}, fmt.Errorf("failed to read upload: %w", err)
	}

	key, err := s.keys.KeyFor(upload.Filename)
	if err != nil {
		return Ref{}, fmt.Errorf("failed to generate storage key: %w", err)
	}

	if err := s.blobs.Put(ctx, key, bytes.NewReader(data), datalayer.PutOptions{
		Size:        int64(len(data)),
		ContentType: upload.ContentType,
	}); err != nil {
		return Ref{}, &StorageError{Key: key, Err: err}
	}

	url := s.blobs.URL(key)
	id, err := s.attachments.Create(ctx, repository.Attachment{
		StorageKey: key,
		URL:        url,
		MimeType:   upload.ContentType,
		Title:      titleFromFilename(upload.Filename),
	})
	if err != nil {
		return Ref{}, &CreateError{Err: err}
	}

	meta := repository.DerivedMetadata{FileSize: int64(len(data))}
	if upload.ContentType == "" && len(data) > 0 {
		meta.MimeType = http.DetectContentType(data)
	}
	if err := s.attachments.UpdateMetadata(ctx, id, meta); err != nil {
		slog.Warn("failed to generate attachment metadata", "attachmentID", id, "error", err)
	}

	return Ref{ID: id, URL: url}, nil
}

// Associate records the comment → attachment link. Overwriting an
// existing association is harmless; creation only happens once per
// comment in practice.
func (s *Service) Associate(ctx context.Context, commentID, attachmentID int64) error {
	err := s.meta.Set(ctx, commentID, MetaKeyAudioAttachment, strconv.FormatInt(attachmentID, 10))
	if err != nil {
		return fmt.Errorf("failed to associate attachment %d with comment %d: %w", attachmentID, commentID, err)
	}
	return nil
}

// AttachmentURL resolves the audio URL for a comment. The second
// return is false when the comment has no association or the
// attachment no longer exists.
func (s *Service) AttachmentURL(ctx context.Context, commentID int64) (string, bool, error) {
	raw, err := s.meta.Get(ctx, commentID, MetaKeyAudioAttachment)
	if err != nil {
		return "", false, err
	}
	if raw == "" {
		return "", false, nil
	}

	attachmentID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", false, fmt.Errorf("malformed attachment reference %q on comment %d: %w", raw, commentID, err)
	}

	a, err := s.attachments.Get(ctx, attachmentID)
	if errors.Is(err, repository.ErrAttachmentNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return a.URL, true, nil
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
