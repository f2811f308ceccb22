// Package handler serves the action dispatcher endpoint the recorder
// client talks to, plus the read-side pages for rendered comments and
// the leaderboard.
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bakry/voice-comments/internal/attach"
	"github.com/bakry/voice-comments/internal/comments"
	"github.com/bakry/voice-comments/internal/plugin"
	"github.com/bakry/voice-comments/internal/reaction"
	"github.com/bakry/voice-comments/internal/wire"
)

// Ajax multiplexes the write-side actions over a single POST endpoint,
// discriminated by the "action" form field.
type Ajax struct {
	attachments    *attach.Service
	reactions      reaction.Store
	plugin         *plugin.Plugin
	pipeline       *comments.Pipeline
	maxUploadBytes int64
}

func NewAjax(
	attachments *attach.Service,
	reactions reaction.Store,
	p *plugin.Plugin,
	pipeline *comments.Pipeline,
	maxUploadBytes int64,
) *Ajax {
	return &Ajax{
		attachments:    attachments,
		reactions:      reactions,
		plugin:         p,
		pipeline:       pipeline,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Ajax) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, &UserError{Message: "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := parseForm(r); err != nil {
		writeErr(w, err)
		return
	}

	switch action := r.PostFormValue(wire.FieldAction); action {
	case wire.ActionUploadVoiceComment:
		h.handleUpload(w, r)
	case wire.ActionVoiceReaction:
		h.handleReaction(w, r)
	case wire.ActionPostComment:
		h.handlePostComment(w, r)
	case "":
		writeErr(w, &UserError{Message: "missing action"})
	default:
		writeErr(w, &UserError{Message: "unknown action: " + action})
	}
}

func parseForm(r *http.Request) error {
	contentType := r.Header.Get("Content-Type")
	var err error
	if strings.HasPrefix(contentType, "multipart/form-data") {
		err = r.ParseMultipartForm(32 << 20)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return &UserError{Message: "recording is too large"}
	}
	return &UserError{Message: "malformed request body"}
}
