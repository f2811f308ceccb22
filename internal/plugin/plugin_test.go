package plugin_test

import (
	"bytes"
	"context"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bakry/voice-comments/internal/attach"
	"github.com/bakry/voice-comments/internal/comments"
	"github.com/bakry/voice-comments/internal/datalayer"
	"github.com/bakry/voice-comments/internal/plugin"
	"github.com/bakry/voice-comments/internal/presenters"
	"github.com/bakry/voice-comments/internal/reaction"
	"github.com/bakry/voice-comments/internal/repository"
	"github.com/bakry/voice-comments/internal/wire"
)

type fixture struct {
	attachments *attach.Service
	reactions   *reaction.MemoryStore
	pipeline    *comments.Pipeline
	plugin      *plugin.Plugin
}

type staticLister struct {
	commenters []repository.VoiceCommenter
}

func (l *staticLister) TopVoiceCommenters(ctx context.Context, metaKey string, limit int) ([]repository.VoiceCommenter, error) {
	if limit > 0 && limit < len(l.commenters) {
		return l.commenters[:limit], nil
	}
	return l.commenters, nil
}

func newFixture(lister plugin.VoiceCommenterLister) fixture {
	attachments := attach.NewService(
		datalayer.NewMemoryBlobStorage("http://localhost:9000/voicecomments"),
		repository.NewMemoryAttachmentStore(),
		repository.NewMemoryCommentMetaStore(),
	)
	reactions := reaction.NewMemoryStore()
	pipeline := comments.NewPipeline(repository.NewMemoryCommentStore())

	p := plugin.New(attachments, reactions, lister)
	p.Register(pipeline)

	return fixture{
		attachments: attachments,
		reactions:   reactions,
		pipeline:    pipeline,
		plugin:      p,
	}
}

func (f fixture) postVoiceComment(t *testing.T, body string) int64 {
	t.Helper()
	ctx := context.Background()

	ref, err := f.attachments.Upload(ctx, attach.Upload{
		Filename:    "clip.webm",
		ContentType: "audio/webm",
		Data:        bytes.NewReader([]byte{0x1a, 0x45, 0xdf, 0xa3}),
	})
	if err != nil {
		t.Fatalf("failed to upload audio: %v", err)
	}

	form := url.Values{}
	form.Set(wire.FieldAttachmentRef, strconv.FormatInt(ref.ID, 10))

	id, err := f.pipeline.PostComment(ctx, repository.Comment{
		PostID: 1,
		Author: "malak",
		Body:   body,
	}, form)
	if err != nil {
		t.Fatalf("failed to post comment: %v", err)
	}
	return id
}

func TestRenderVoiceComment(t *testing.T) {
	f := newFixture(&staticLister{})
	ctx := context.Background()

	id := f.postVoiceComment(t, "listen to this")

	text, err := f.pipeline.RenderText(ctx, id)
	if err != nil {
		t.Fatalf("failed to render comment: %v", err)
	}

	if !strings.Contains(text, "<audio controls") {
		t.Errorf("rendered text is missing the audio player: %q", text)
	}
	if !strings.Contains(text, "wvc-voice-like") {
		t.Errorf("rendered text is missing the reaction controls: %q", text)
	}
	if !strings.HasPrefix(text, "listen to this") {
		t.Errorf("markup should follow the comment body, got %q", text)
	}
}

func TestRenderPlainComment(t *testing.T) {
	f := newFixture(&staticLister{})
	ctx := context.Background()

	id, err := f.pipeline.PostComment(ctx, repository.Comment{
		PostID: 1,
		Author: "malak",
		Body:   "just text",
	}, url.Values{})
	if err != nil {
		t.Fatalf("failed to post comment: %v", err)
	}

	text, err := f.pipeline.RenderText(ctx, id)
	if err != nil {
		t.Fatalf("failed to render comment: %v", err)
	}

	if text != "just text" {
		t.Errorf("comment without audio should render unchanged, got %q", text)
	}
}

func TestMalformedAttachmentRef(t *testing.T) {
	f := newFixture(&staticLister{})
	ctx := context.Background()

	form := url.Values{}
	form.Set(wire.FieldAttachmentRef, "not-a-number")

	id, err := f.pipeline.PostComment(ctx, repository.Comment{
		PostID: 1,
		Author: "malak",
		Body:   "oops",
	}, form)
	if err != nil {
		t.Fatalf("a bad attachment reference must not fail the comment: %v", err)
	}

	hasAudio, err := f.plugin.HasAudio(ctx, id)
	if err != nil {
		t.Fatalf("failed to check audio: %v", err)
	}
	if hasAudio {
		t.Error("malformed reference must not produce an association")
	}
}

func TestHasAudio(t *testing.T) {
	f := newFixture(&staticLister{})
	ctx := context.Background()

	withAudio := f.postVoiceComment(t, "voiced")
	plainID, err := f.pipeline.PostComment(ctx, repository.Comment{
		PostID: 1,
		Author: "malak",
		Body:   "silent",
	}, url.Values{})
	if err != nil {
		t.Fatalf("failed to post comment: %v", err)
	}

	hasAudio, err := f.plugin.HasAudio(ctx, withAudio)
	if err != nil || !hasAudio {
		t.Errorf("expected audio on comment %d (err=%v)", withAudio, err)
	}

	hasAudio, err = f.plugin.HasAudio(ctx, plainID)
	if err != nil || hasAudio {
		t.Errorf("expected no audio on comment %d (err=%v)", plainID, err)
	}
}

func TestLeaderboard(t *testing.T) {
	lister := &staticLister{
		commenters: []repository.VoiceCommenter{
			{Author: "malak", CommentCount: 3, CommentIDs: []int64{1, 2, 3}},
			{Author: "bakry", CommentCount: 1, CommentIDs: []int64{4}},
		},
	}
	f := newFixture(lister)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := f.reactions.Increment(ctx, 2, reaction.KindLike); err != nil {
			t.Fatalf("failed to increment: %v", err)
		}
	}
	if _, err := f.reactions.Increment(ctx, 4, reaction.KindLike); err != nil {
		t.Fatalf("failed to increment: %v", err)
	}
	if _, err := f.reactions.Increment(ctx, 4, reaction.KindDislike); err != nil {
		t.Fatalf("failed to increment: %v", err)
	}

	rows, err := f.plugin.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("failed to build leaderboard: %v", err)
	}

	want := []presenters.LeaderboardRow{
		{Author: "malak", CommentCount: 3, LikeCount: 5},
		{Author: "bakry", CommentCount: 1, LikeCount: 1},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("unexpected leaderboard (-want +got):\n%s", diff)
	}
}

func TestLeaderboardLikeTiebreak(t *testing.T) {
	// ann sorts before zed alphabetically; zed's likes must win the
	// tie on comment count.
	lister := &staticLister{
		commenters: []repository.VoiceCommenter{
			{Author: "ann", CommentCount: 1, CommentIDs: []int64{1}},
			{Author: "zed", CommentCount: 1, CommentIDs: []int64{2}},
		},
	}
	f := newFixture(lister)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := f.reactions.Increment(ctx, 2, reaction.KindLike); err != nil {
			t.Fatalf("failed to increment: %v", err)
		}
	}

	rows, err := f.plugin.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("failed to build leaderboard: %v", err)
	}

	want := []presenters.LeaderboardRow{
		{Author: "zed", CommentCount: 1, LikeCount: 5},
		{Author: "ann", CommentCount: 1, LikeCount: 0},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("unexpected leaderboard (-want +got):\n%s", diff)
	}

	// A cap at the tie boundary must keep the liked author, not the
	// alphabetically first one.
	rows, err = f.plugin.Leaderboard(ctx, 1)
	if err != nil {
		t.Fatalf("failed to build capped leaderboard: %v", err)
	}
	if len(rows) != 1 || rows[0].Author != "zed" {
		t.Errorf("expected the capped leaderboard to keep zed, got %+v", rows)
	}
}
