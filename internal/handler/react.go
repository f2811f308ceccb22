package handler

import (
	"net/http"
	"strconv"

	"github.com/bakry/voice-comments/internal/reaction"
	"github.com/bakry/voice-comments/internal/wire"
)

func (h *Ajax) handleReaction(w http.ResponseWriter, r *http.Request) {
	commentID, err := strconv.ParseInt(r.PostFormValue(wire.FieldCommentID), 10, 64)
	if err != nil {
		writeErr(w, &UserError{Message: "invalid comment id"})
		return
	}

	kind, err := reaction.ParseKind(r.PostFormValue(wire.FieldReaction))
	if err != nil {
		writeErr(w, &UserError{Message: err.Error()})
		return
	}

	// Only comments carrying audio accept reactions.
	hasAudio, err := h.plugin.HasAudio(r.Context(), commentID)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !hasAudio {
		writeErr(w, &UserError{Message: "comment has no voice recording"})
		return
	}

	counters, err := h.reactions.Increment(r.Context(), commentID, kind)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeOK(w, wire.ReactionValue{
		Likes:    counters.Likes,
		Dislikes: counters.Dislikes,
	})
}
