package handler

import (
	"net/http"
	"strconv"

	"github.com/bakry/voice-comments/internal/repository"
	"github.com/bakry/voice-comments/internal/wire"
)

func (h *Ajax) handlePostComment(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(r.PostFormValue(wire.FieldPostID), 10, 64)
	if err != nil {
		writeErr(w, &UserError{Message: "invalid post id"})
		return
	}

	author := r.PostFormValue(wire.FieldAuthor)
	if author == "" {
		writeErr(w, &UserError{Message: "missing author"})
		return
	}

	body := r.PostFormValue(wire.FieldCommentBody)
	if body == "" && r.PostFormValue(wire.FieldAttachmentRef) == "" {
		writeErr(w, &UserError{Message: "comment needs text or a voice recording"})
		return
	}

	// The full form rides along so created hooks can pick up the
	// attachment reference handoff field.
	commentID, err := h.pipeline.PostComment(r.Context(), repository.Comment{
		PostID: postID,
		Author: author,
		Body:   body,
	}, r.PostForm)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeOK(w, wire.PostCommentValue{CommentID: commentID})
}
