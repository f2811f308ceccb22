// Package wire pins the canonical contract between the recorder
// client and the action dispatcher: action names, form fields, and the
// single discriminated result envelope every response uses.
package wire

import "encoding/json"

// Action discriminator values accepted by the dispatcher.
const (
	ActionUploadVoiceComment = "upload_voice_comment"
	ActionVoiceReaction      = "voice_comment_reaction"
	ActionPostComment        = "post_comment"
)

// Form field names.
const (
	FieldAction        = "action"
	FieldVoiceComment  = "voice_comment"
	FieldCommentID     = "comment_id"
	FieldReaction      = "reaction"
	FieldPostID        = "post_id"
	FieldAuthor        = "author"
	FieldCommentBody   = "comment"
	FieldAttachmentRef = "wvc_attachment_id"
)

// Result is the discriminated response envelope:
// {ok:true, value} | {ok:false, error}.
type Result struct {
	OK    bool            `json:"ok"`
	Value json.RawMessage `json:"value,omitempty"`
	Error string          `json:"error,omitempty"`
}

// UploadValue is the success payload of an upload action.
type UploadValue struct {
	AttachmentID int64  `json:"attachment_id"`
	URL          string `json:"url"`
}

// ReactionValue is the success payload of a reaction action: the
// counters as they stand after the increment.
type ReactionValue struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

// PostCommentValue is the success payload of a comment submission.
type PostCommentValue struct {
	CommentID int64 `json:"comment_id"`
}
