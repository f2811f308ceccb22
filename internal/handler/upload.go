package handler

import (
	"net/http"

	"github.com/bakry/voice-comments/internal/attach"
	"github.com/bakry/voice-comments/internal/wire"
)

func (h *Ajax) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile(wire.FieldVoiceComment)
	if err != nil {
		writeErr(w, &UserError{Message: "no audio file received"})
		return
	}
	defer file.Close()

	ref, err := h.attachments.Upload(r.Context(), attach.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        file,
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	writeOK(w, wire.UploadValue{
		AttachmentID: ref.ID,
		URL:          ref.URL,
	})
}
