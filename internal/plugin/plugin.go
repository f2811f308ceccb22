// Package plugin wires the attachment and reaction services into the
// host comment pipeline: the comment-created hook records the
// association, and the text filters append the audio player and the
// reaction controls to rendered comment bodies.
package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"

	"github.com/bakry/voice-comments/internal/attach"
	"github.com/bakry/voice-comments/internal/comments"
	"github.com/bakry/voice-comments/internal/presenters"
	"github.com/bakry/voice-comments/internal/reaction"
	"github.com/bakry/voice-comments/internal/repository"
	"github.com/bakry/voice-comments/internal/wire"
)

// VoiceCommenterLister is the aggregate the leaderboard ranks by.
type VoiceCommenterLister interface {
	TopVoiceCommenters(ctx context.Context, metaKey string, limit int) ([]repository.VoiceCommenter, error)
}

type Plugin struct {
	attachments *attach.Service
	reactions   reaction.Store
	commenters  VoiceCommenterLister
}

func New(attachments *attach.Service, reactions reaction.Store, commenters VoiceCommenterLister) *Plugin {
	return &Plugin{
		attachments: attachments,
		reactions:   reactions,
		commenters:  commenters,
	}
}

// Register hangs the plugin off the pipeline's hook points. Filters
// run in registration order: audio player first, reactions beneath it.
func (p *Plugin) Register(pipeline *comments.Pipeline) {
	pipeline.OnCommentCreated(p.saveCommentAudio)
	pipeline.AddTextFilter(p.appendAudioPlayer)
	pipeline.AddTextFilter(p.appendReactionControls)
}

// saveCommentAudio binds the browser-held attachment reference to the
// freshly created comment. Comments without the hidden field pass
// through untouched.
func (p *Plugin) saveCommentAudio(ctx context.Context, commentID int64, form url.Values) error {
	raw := form.Get(wire.FieldAttachmentRef)
	if raw == "" {
		return nil
	}
	attachmentID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed attachment reference %q: %w", raw, err)
	}
	return p.attachments.Associate(ctx, commentID, attachmentID)
}

func (p *Plugin) appendAudioPlayer(ctx context.Context, commentID int64, text string) string {
	audioURL, ok, err := p.attachments.AttachmentURL(ctx, commentID)
	if err != nil {
		slog.Warn("failed to resolve comment audio", "commentID", commentID, "error", err)
		return text
	}
	if !ok {
		return text
	}
	return text + presenters.AudioPlayer(audioURL)
}

// appendReactionControls renders like/dislike buttons only on comments
// that carry audio.
func (p *Plugin) appendReactionControls(ctx context.Context, commentID int64, text string) string {
	_, ok, err := p.attachments.AttachmentURL(ctx, commentID)
	if err != nil || !ok {
		return text
	}
	counters, err := p.reactions.Counters(ctx, commentID)
	if err != nil {
		slog.Warn("failed to read reaction counters", "commentID", commentID, "error", err)
		return text
	}
	return text + presenters.ReactionControls(commentID, counters)
}

// HasAudio reports whether the comment carries a resolvable voice
// attachment. Reactions are only accepted for such comments.
func (p *Plugin) HasAudio(ctx context.Context, commentID int64) (bool, error) {
	_, ok, err := p.attachments.AttachmentURL(ctx, commentID)
	return ok, err
}

// Leaderboard ranks authors by voice comment count, then by total
// likes across those comments. Likes live in the reaction store, not
// Postgres, so all authors are fetched and the cap is applied only
// after the like tiebreak; capping earlier could cut an author tied
// at the boundary.
func (p *Plugin) Leaderboard(ctx context.Context, limit int) ([]presenters.LeaderboardRow, error) {
	commenters, err := p.commenters.TopVoiceCommenters(ctx, attach.MetaKeyAudioAttachment, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to rank voice commenters: %w", err)
	}

	rows := make([]presenters.LeaderboardRow, 0, len(commenters))
	for _, c := range commenters {
		likes, err := p.reactions.SumLikes(ctx, c.CommentIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to sum likes for %s: %w", c.Author, err)
		}
		rows = append(rows, presenters.LeaderboardRow{
			Author:       c.Author,
			CommentCount: c.CommentCount,
			LikeCount:    likes,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CommentCount != rows[j].CommentCount {
			return rows[i].CommentCount > rows[j].CommentCount
		}
		if rows[i].LikeCount != rows[j].LikeCount {
			return rows[i].LikeCount > rows[j].LikeCount
		}
		return rows[i].Author < rows[j].Author
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
