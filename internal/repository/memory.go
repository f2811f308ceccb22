package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

// In-memory store implementations for tests and local development.

type MemoryAttachmentStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]Attachment
}

func NewMemoryAttachmentStore() *MemoryAttachmentStore {
	return &MemoryAttachmentStore{rows: make(map[int64]Attachment)}
}

var _ AttachmentStore = (*MemoryAttachmentStore)(nil)

func (s *MemoryAttachmentStore) Create(ctx context.Context, a Attachment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	a.ID = s.nextID
	a.CreatedAt = time.Now()
	s.rows[a.ID] = a
	return a.ID, nil
}

func (s *MemoryAttachmentStore) Get(ctx context.Context, id int64) (Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.rows[id]
	if !ok {
		return Attachment{}, ErrAttachmentNotFound
	}
	return a, nil
}

func (s *MemoryAttachmentStore) UpdateMetadata(ctx context.Context, id int64, meta DerivedMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return ErrAttachmentNotFound
	}
	if meta.FileSize != 0 {
		a.FileSize = meta.FileSize
	}
	if meta.MimeType != "" {
		a.MimeType = meta.MimeType
	}
	s.rows[id] = a
	return nil
}

func (s *MemoryAttachmentStore) List(ctx context.Context, limit int) ([]Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var attachments []Attachment
	for _, a := range s.rows {
		attachments = append(attachments, a)
	}
	sort.Slice(attachments, func(i, j int) bool {
		return attachments[i].ID > attachments[j].ID
	})
	if len(attachments) > limit {
		attachments = attachments[:limit]
	}
	return attachments, nil
}

// Delete removes an attachment row. Test helper for the deleted-media
// rendering path.
func (s *MemoryAttachmentStore) Delete(id int64) {
	s.mu.Lock()
	delete(s.rows, id)
	s.mu.Unlock()
}

type MemoryCommentStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]Comment
}

func NewMemoryCommentStore() *MemoryCommentStore {
	return &MemoryCommentStore{rows: make(map[int64]Comment)}
}

var _ CommentStore = (*MemoryCommentStore)(nil)

func (s *MemoryCommentStore) Create(ctx context.Context, c Comment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	c.CreatedAt = time.Now()
	s.rows[c.ID] = c
	return c.ID, nil
}

func (s *MemoryCommentStore) Get(ctx context.Context, id int64) (Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.rows[id]
	if !ok {
		return Comment{}, ErrCommentNotFound
	}
	return c, nil
}

func (s *MemoryCommentStore) ListByPost(ctx context.Context, postID int64) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var comments []Comment
	for _, c := range s.rows {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

type metaEntry struct {
	commentID int64
	key       string
}

type MemoryCommentMetaStore struct {
	mu     sync.RWMutex
	values map[metaEntry]string
}

func NewMemoryCommentMetaStore() *MemoryCommentMetaStore {
	return &MemoryCommentMetaStore{values: make(map[metaEntry]string)}
}

var _ CommentMetaStore = (*MemoryCommentMetaStore)(nil)

func (s *MemoryCommentMetaStore) Get(ctx context.Context, commentID int64, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[metaEntry{commentID, key}], nil
}

func (s *MemoryCommentMetaStore) Set(ctx context.Context, commentID int64, key, value string) error {
	s.mu.Lock()
	s.values[metaEntry{commentID, key}] = value
	s.mu.Unlock()
	return nil
}
