package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/bakry/voice-comments/internal/attach"
	"github.com/bakry/voice-comments/internal/comments"
	"github.com/bakry/voice-comments/internal/datalayer"
	"github.com/bakry/voice-comments/internal/handler"
	"github.com/bakry/voice-comments/internal/plugin"
	"github.com/bakry/voice-comments/internal/reaction"
	"github.com/bakry/voice-comments/internal/repository"
	"github.com/bakry/voice-comments/internal/wire"
)

type noopLister struct{}

func (noopLister) TopVoiceCommenters(ctx context.Context, metaKey string, limit int) ([]repository.VoiceCommenter, error) {
	return nil, nil
}

func newAjax(t *testing.T) (*handler.Ajax, *comments.Pipeline) {
	t.Helper()

	attachments := attach.NewService(
		datalayer.NewMemoryBlobStorage("http://localhost:9000/voicecomments"),
		repository.NewMemoryAttachmentStore(),
		repository.NewMemoryCommentMetaStore(),
	)
	reactions := reaction.NewMemoryStore()
	pipeline := comments.NewPipeline(repository.NewMemoryCommentStore())

	p := plugin.New(attachments, reactions, noopLister{})
	p.Register(pipeline)

	return handler.NewAjax(attachments, reactions, p, pipeline, 1<<20), pipeline
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) wire.Result {
	t.Helper()
	var result wire.Result
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return result
}

func uploadRequest(t *testing.T, audio []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField(wire.FieldAction, wire.ActionUploadVoiceComment); err != nil {
		t.Fatalf("failed to write action field: %v", err)
	}
	part, err := mw.CreateFormFile(wire.FieldVoiceComment, "voice-comment.webm")
	if err != nil {
		t.Fatalf("failed to create file part: %v", err)
	}
	if _, err := part.Write(audio); err != nil {
		t.Fatalf("failed to write audio: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/ajax", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func formRequest(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/ajax", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestUploadVoiceComment(t *testing.T) {
	ajax, _ := newAjax(t)

	w := httptest.NewRecorder()
	ajax.ServeHTTP(w, uploadRequest(t, []byte("webm bytes")))

	result := decodeResult(t, w)
	if !result.OK {
		t.Fatalf("expected success, got error %q", result.Error)
	}

	var value wire.UploadValue
	if err := json.Unmarshal(result.Value, &value); err != nil {
		t.Fatalf("failed to decode upload value: %v", err)
	}
	if value.AttachmentID == 0 {
		t.Error("expected a non-zero attachment id")
	}
	if value.URL == "" {
		t.Error("expected a playback URL")
	}
}

func TestUploadWithoutFile(t *testing.T) {
	ajax, _ := newAjax(t)

	form := url.Values{}
	form.Set(wire.FieldAction, wire.ActionUploadVoiceComment)

	w := httptest.NewRecorder()
	ajax.ServeHTTP(w, formRequest(form))

	result := decodeResult(t, w)
	if result.OK {
		t.Fatal("expected a failure envelope")
	}
	if result.Error != "no audio file received" {
		t.Errorf("unexpected error message %q", result.Error)
	}
}

func TestUnknownAction(t *testing.T) {
	ajax, _ := newAjax(t)

	form := url.Values{}
	form.Set(wire.FieldAction, "delete_everything")

	w := httptest.NewRecorder()
	ajax.ServeHTTP(w, formRequest(form))

	result := decodeResult(t, w)
	if result.OK {
		t.Fatal("expected a failure envelope")
	}
	if !strings.Contains(result.Error, "unknown action") {
		t.Errorf("unexpected error message %q", result.Error)
	}
}

func postVoiceComment(t *testing.T, ajax *handler.Ajax) int64 {
	t.Helper()

	w := httptest.NewRecorder()
	ajax.ServeHTTP(w, uploadRequest(t, []byte("webm bytes")))
	result := decodeResult(t, w)
	if !result.OK {
		t.Fatalf("upload failed: %q", result.Error)
	}
	var upload wire.UploadValue
	if err := json.Unmarshal(result.Value, &upload); err != nil {
		t.Fatalf("failed to decode upload value: %v", err)
	}

	form := url.Values{}
	form.Set(wire.FieldAction, wire.ActionPostComment)
	form.Set(wire.FieldPostID, "1")
	form.Set(wire.FieldAuthor, "malak")
	form.Set(wire.FieldCommentBody, "check this out")
	form.Set(wire.FieldAttachmentRef, strconv.FormatInt(upload.AttachmentID, 10))

	w = httptest.NewRecorder()
	ajax.ServeHTTP(w, formRequest(form))
	result = decodeResult(t, w)
	if !result.OK {
		t.Fatalf("post_comment failed: %q", result.Error)
	}
	var posted wire.PostCommentValue
	if err := json.Unmarshal(result.Value, &posted); err != nil {
		t.Fatalf("failed to decode post value: %v", err)
	}
	return posted.CommentID
}

func TestReactionFlow(t *testing.T) {
	ajax, _ := newAjax(t)
	commentID := postVoiceComment(t, ajax)

	react := func(kind string) wire.Result {
		form := url.Values{}
		form.Set(wire.FieldAction, wire.ActionVoiceReaction)
		form.Set(wire.FieldCommentID, strconv.FormatInt(commentID, 10))
		form.Set(wire.FieldReaction, kind)
		w := httptest.NewRecorder()
		ajax.ServeHTTP(w, formRequest(form))
		return decodeResult(t, w)
	}

	result := react("like")
	if !result.OK {
		t.Fatalf("like failed: %q", result.Error)
	}
	var counters wire.ReactionValue
	if err := json.Unmarshal(result.Value, &counters); err != nil {
		t.Fatalf("failed to decode counters: %v", err)
	}
	if counters.Likes != 1 || counters.Dislikes != 0 {
		t.Errorf("expected (1, 0), got (%d, %d)", counters.Likes, counters.Dislikes)
	}

	result = react("dislike")
	if !result.OK {
		t.Fatalf("dislike failed: %q", result.Error)
	}
	if err := json.Unmarshal(result.Value, &counters); err != nil {
		t.Fatalf("failed to decode counters: %v", err)
	}
	if counters.Likes != 1 || counters.Dislikes != 1 {
		t.Errorf("expected (1, 1), got (%d, %d)", counters.Likes, counters.Dislikes)
	}

	result = react("neutral")
	if result.OK {
		t.Fatal("expected the unknown reaction to be rejected")
	}
}

func TestReactionRequiresAudio(t *testing.T) {
	ajax, pipeline := newAjax(t)

	commentID, err := pipeline.PostComment(context.Background(), repository.Comment{
		PostID: 1,
		Author: "malak",
		Body:   "no audio here",
	}, url.Values{})
	if err != nil {
		t.Fatalf("failed to post comment: %v", err)
	}

	form := url.Values{}
	form.Set(wire.FieldAction, wire.ActionVoiceReaction)
	form.Set(wire.FieldCommentID, strconv.FormatInt(commentID, 10))
	form.Set(wire.FieldReaction, "like")

	w := httptest.NewRecorder()
	ajax.ServeHTTP(w, formRequest(form))

	result := decodeResult(t, w)
	if result.OK {
		t.Fatal("expected the reaction to be rejected")
	}
	if result.Error != "comment has no voice recording" {
		t.Errorf("unexpected error message %q", result.Error)
	}
}

func TestPostCommentRendersWithAudio(t *testing.T) {
	ajax, pipeline := newAjax(t)
	commentID := postVoiceComment(t, ajax)

	text, err := pipeline.RenderText(context.Background(), commentID)
	if err != nil {
		t.Fatalf("failed to render comment: %v", err)
	}
	if !strings.Contains(text, "<audio controls") {
		t.Errorf("rendered comment is missing the audio player: %q", text)
	}
}

func TestOversizedUploadRejected(t *testing.T) {
	attachments := attach.NewService(
		datalayer.NewMemoryBlobStorage("http://localhost:9000/voicecomments"),
		repository.NewMemoryAttachmentStore(),
		repository.NewMemoryCommentMetaStore(),
	)
	reactions := reaction.NewMemoryStore()
	pipeline := comments.NewPipeline(repository.NewMemoryCommentStore())
	p := plugin.New(attachments, reactions, noopLister{})
	p.Register(pipeline)

	ajax := handler.NewAjax(attachments, reactions, p, pipeline, 512)

	w := httptest.NewRecorder()
	ajax.ServeHTTP(w, uploadRequest(t, bytes.Repeat([]byte{0xab}, 4096)))

	result := decodeResult(t, w)
	if result.OK {
		t.Fatal("expected the oversized upload to be rejected")
	}
	if result.Error != "recording is too large" {
		t.Errorf("unexpected error message %q", result.Error)
	}
}
