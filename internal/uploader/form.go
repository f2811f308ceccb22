package uploader

import (
	"net/url"
	"sync"

	"github.com/bakry/voice-comments/internal/wire"
)

// CommentForm models the pending comment submission the attachment
// reference is threaded through. The hidden field is created on first
// write and overwritten on re-record, so only the latest upload rides
// along when the comment is finally posted.
type CommentForm struct {
	mu     sync.Mutex
	fields url.Values
}

func NewCommentForm() *CommentForm {
	return &CommentForm{fields: url.Values{}}
}

func (f *CommentForm) Set(name, value string) {
	f.mu.Lock()
	f.fields.Set(name, value)
	f.mu.Unlock()
}

func (f *CommentForm) Get(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields.Get(name)
}

// AttachmentRef returns the held attachment id, or "" when no upload
// has succeeded yet.
func (f *CommentForm) AttachmentRef() string {
	return f.Get(wire.FieldAttachmentRef)
}

// Values snapshots the form for submission to the comment pipeline.
func (f *CommentForm) Values() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot := url.Values{}
	for k, vs := range f.fields {
		for _, v := range vs {
			snapshot.Add(k, v)
		}
	}
	return snapshot
}
