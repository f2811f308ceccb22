package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bakry/voice-comments/internal/comments"
	"github.com/bakry/voice-comments/internal/plugin"
	"github.com/bakry/voice-comments/internal/presenters"
	"github.com/bakry/voice-comments/internal/repository"
)

// CommentPage renders a single comment body with all text filters
// applied, so the audio player and reaction controls show up inline.
type CommentPage struct {
	pipeline *comments.Pipeline
}

func NewCommentPage(pipeline *comments.Pipeline) *CommentPage {
	return &CommentPage{pipeline: pipeline}
}

func (h *CommentPage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	commentID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid comment id", http.StatusBadRequest)
		return
	}

	text, err := h.pipeline.RenderText(r.Context(), commentID)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to render comment", "commentID", commentID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write comment page", "error", err)
	}
}

// LeaderboardPage renders the top voice commenters as an HTML table.
type LeaderboardPage struct {
	plugin *plugin.Plugin
	limit  int
}

func NewLeaderboardPage(p *plugin.Plugin, limit int) *LeaderboardPage {
	return &LeaderboardPage{plugin: p, limit: limit}
}

func (h *LeaderboardPage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rows, err := h.plugin.Leaderboard(r.Context(), h.limit)
	if err != nil {
		slog.Error("failed to build leaderboard", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(presenters.Leaderboard(rows))); err != nil {
		slog.Error("failed to write leaderboard page", "error", err)
	}
}
