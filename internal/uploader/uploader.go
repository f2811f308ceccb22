// Package uploader packages a finalized recording as a multipart
// submission and threads the returned attachment reference into the
// pending comment form.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/bakry/voice-comments/internal/recorder"
	"github.com/bakry/voice-comments/internal/wire"
)

// HTTPClient is an abstraction for making HTTP requests.
// The implementation is usually Go's stdlib http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Ref is the attachment reference returned by a successful upload.
type Ref struct {
	AttachmentID int64
	URL          string
}

// TransportError is an HTTP-level or network-level upload failure.
// Uploads are at-most-once: the caller surfaces the message and the
// user retries by re-recording.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to upload voice comment: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

var _ error = (*TransportError)(nil)

// ServerError carries the server-provided message from an
// {ok:false} envelope.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string { return e.Message }

var _ error = (*ServerError)(nil)

type Uploader struct {
	client   HTTPClient
	endpoint string
	form     *CommentForm
}

func NewUploader(client HTTPClient, endpoint string, form *CommentForm) *Uploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Uploader{client: client, endpoint: endpoint, form: form}
}

// Submit uploads the blob as one multipart POST. On success the
// attachment id is written into the comment form's hidden field,
// overwriting any earlier upload's reference. On failure the form is
// left untouched so the comment stays submittable without audio.
func (u *Uploader) Submit(ctx context.Context, blob *recorder.Blob) (Ref, error) {
	body, contentType, err := buildMultipart(blob)
	if err != nil {
		return Ref{}, fmt.Errorf("failed to build upload payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, body)
	if err != nil {
		return Ref{}, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.client.Do(req)
	if err != nil {
		return Ref{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Ref{}, &TransportError{Err: err}
	}

	var result wire.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return Ref{}, &TransportError{Err: fmt.Errorf("malformed response: %w", err)}
	}
	if !result.OK {
		return Ref{}, &ServerError{Message: result.Error}
	}

	var value wire.UploadValue
	if err := json.Unmarshal(result.Value, &value); err != nil {
		return Ref{}, &TransportError{Err: fmt.Errorf("malformed upload value: %w", err)}
	}

	if u.form != nil {
		u.form.Set(wire.FieldAttachmentRef, strconv.FormatInt(value.AttachmentID, 10))
	}
	return Ref{AttachmentID: value.AttachmentID, URL: value.URL}, nil
}

func buildMultipart(blob *recorder.Blob) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField(wire.FieldAction, wire.ActionUploadVoiceComment); err != nil {
		return nil, "", err
	}

	// CreateFormFile pins Content-Type to application/octet-stream;
	// the part needs the real audio MIME type.
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, wire.FieldVoiceComment, filenameFor(blob.MIMEType)))
	header.Set("Content-Type", blob.MIMEType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(blob.Data); err != nil {
		return nil, "", err
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

func filenameFor(mimeType string) string {
	ext := ".webm"
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	return "comment" + ext
}
