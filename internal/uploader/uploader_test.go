package uploader_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bakry/voice-comments/internal/recorder"
	"github.com/bakry/voice-comments/internal/uploader"
	"github.com/bakry/voice-comments/internal/wire"
)

func TestSubmitWritesHiddenField(t *testing.T) {
	var gotAction string
	var gotBytes []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not a multipart request: %v", err)
		}
		gotAction = r.FormValue(wire.FieldAction)

		file, header, err := r.FormFile(wire.FieldVoiceComment)
		if err != nil {
			t.Errorf("missing file field: %v", err)
		} else {
			defer file.Close()
			gotBytes, _ = io.ReadAll(file)
			if ct := header.Header.Get("Content-Type"); ct != "audio/webm" {
				t.Errorf("file part content type = %q", ct)
			}
		}

		value, _ := json.Marshal(wire.UploadValue{AttachmentID: 42, URL: "/uploads/2024/audio-42.webm"})
		_ = json.NewEncoder(w).Encode(wire.Result{OK: true, Value: value})
	}))
	defer server.Close()

	form := uploader.NewCommentForm()
	u := uploader.NewUploader(server.Client(), server.URL, form)

	blob := &recorder.Blob{Data: []byte("audio payload"), MIMEType: "audio/webm"}
	ref, err := u.Submit(t.Context(), blob)
	if err != nil {
		t.Fatalf("failed to submit: %v", err)
	}

	if gotAction != wire.ActionUploadVoiceComment {
		t.Errorf("action = %q", gotAction)
	}
	if string(gotBytes) != "audio payload" {
		t.Errorf("server received %q", gotBytes)
	}
	if ref.AttachmentID != 42 || ref.URL != "/uploads/2024/audio-42.webm" {
		t.Errorf("ref = %+v", ref)
	}
	if form.AttachmentRef() != "42" {
		t.Errorf("hidden field = %q, want 42", form.AttachmentRef())
	}
}

func TestSubmitOverwritesPreviousReference(t *testing.T) {
	var nextID int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextID++
		value, _ := json.Marshal(wire.UploadValue{AttachmentID: nextID, URL: "/a"})
		_ = json.NewEncoder(w).Encode(wire.Result{OK: true, Value: value})
	}))
	defer server.Close()

	form := uploader.NewCommentForm()
	u := uploader.NewUploader(server.Client(), server.URL, form)
	blob := &recorder.Blob{Data: []byte("x"), MIMEType: "audio/webm"}

	for range 2 {
		if _, err := u.Submit(t.Context(), blob); err != nil {
			t.Fatalf("failed to submit: %v", err)
		}
	}
	if form.AttachmentRef() != "2" {
		t.Errorf("hidden field = %q, want the latest upload's id", form.AttachmentRef())
	}
}

func TestSubmitServerFailureLeavesFormEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(wire.Result{OK: false, Error: "no audio file received"})
	}))
	defer server.Close()

	form := uploader.NewCommentForm()
	u := uploader.NewUploader(server.Client(), server.URL, form)

	_, err := u.Submit(t.Context(), &recorder.Blob{Data: []byte("x"), MIMEType: "audio/webm"})
	var serverErr *uploader.ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if serverErr.Message != "no audio file received" {
		t.Errorf("message = %q", serverErr.Message)
	}
	if form.AttachmentRef() != "" {
		t.Errorf("form gained a reference on failure: %q", form.AttachmentRef())
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	form := uploader.NewCommentForm()
	u := uploader.NewUploader(http.DefaultClient, server.URL, form)

	_, err := u.Submit(t.Context(), &recorder.Blob{Data: []byte("x"), MIMEType: "audio/webm"})
	var transportErr *uploader.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if form.AttachmentRef() != "" {
		t.Errorf("form gained a reference on transport failure: %q", form.AttachmentRef())
	}
}
