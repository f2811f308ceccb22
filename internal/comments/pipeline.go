// Package comments is a minimal stand-in for the host platform's
// comment pipeline: it creates comments, fires comment-created hooks
// carrying the raw submitted form, and renders comment bodies through
// an ordered filter chain that plugins append markup with.
package comments

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/url"

	"github.com/bakry/voice-comments/internal/repository"
)

// CreatedHook runs after a comment row exists. It receives the raw
// submitted form so hooks can pick up fields the pipeline itself
// ignores (the attachment reference handoff).
type CreatedHook func(ctx context.Context, commentID int64, form url.Values) error

// TextFilter rewrites a comment's rendered body. Filters run in
// registration order, each receiving the previous filter's output.
type TextFilter func(ctx context.Context, commentID int64, text string) string

type Pipeline struct {
	store   repository.CommentStore
	hooks   []CreatedHook
	filters []TextFilter
}

func NewPipeline(store repository.CommentStore) *Pipeline {
	return &Pipeline{store: store}
}

// OnCommentCreated registers a hook. Registration happens at startup,
// before the pipeline serves requests; there is no locking.
func (p *Pipeline) OnCommentCreated(hook CreatedHook) {
	p.hooks = append(p.hooks, hook)
}

func (p *Pipeline) AddTextFilter(filter TextFilter) {
	p.filters = append(p.filters, filter)
}

// PostComment creates the comment and fires the created hooks.
// A failing hook does not undo the comment; it is logged and the
// remaining hooks still run, matching how the host fires its events.
func (p *Pipeline) PostComment(ctx context.Context, c repository.Comment, form url.Values) (int64, error) {
	id, err := p.store.Create(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("failed to create comment: %w", err)
	}

	for _, hook := range p.hooks {
		if err := hook(ctx, id, form); err != nil {
			slog.Warn("comment created hook failed", "commentID", id, "error", err)
		}
	}
	return id, nil
}

// RenderText returns the comment body with all text filters applied.
// The raw body is HTML-escaped before any filter appends markup.
func (p *Pipeline) RenderText(ctx context.Context, commentID int64) (string, error) {
	c, err := p.store.Get(ctx, commentID)
	if err != nil {
		return "", err
	}

	text := html.EscapeString(c.Body)
	for _, filter := range p.filters {
		text = filter(ctx, commentID, text)
	}
	return text, nil
}

func (p *Pipeline) Comment(ctx context.Context, commentID int64) (repository.Comment, error) {
	return p.store.Get(ctx, commentID)
}

func (p *Pipeline) CommentsForPost(ctx context.Context, postID int64) ([]repository.Comment, error) {
	return p.store.ListByPost(ctx, postID)
}
