package recorder

import (
	"context"
	"errors"
)

// Capture errors a Source reports when it cannot open the microphone.
// Both leave the session idle; the user retries manually.
var (
	ErrPermissionDenied  = errors.New("microphone permission denied")
	ErrDeviceUnavailable = errors.New("audio input device unavailable")
)

// Stream is one live capture. Chunks delivers audio fragments until
// Close is called, after which the channel is closed.
type Stream interface {
	Chunks() <-chan []byte
	MIMEType() string
	Close() error
}

// Source opens capture streams. The real device lives in the browser;
// Go-side sources wrap whatever delivers the fragments.
type Source interface {
	Open(ctx context.Context) (Stream, error)
}

// StaticSource replays a fixed sequence of chunks and then goes
// silent until closed. Used by tests and the development client.
type StaticSource struct {
	MIME   string
	Chunks [][]byte
}

var _ Source = (*StaticSource)(nil)

func (s *StaticSource) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := make(chan []byte, len(s.Chunks))
	for _, chunk := range s.Chunks {
		ch <- chunk
	}

	return &staticStream{mime: s.MIME, ch: ch}, nil
}

type staticStream struct {
	mime string
	ch   chan []byte
}

func (s *staticStream) Chunks() <-chan []byte { return s.ch }

func (s *staticStream) MIMEType() string {
	if s.mime == "" {
		return "audio/webm"
	}
	return s.mime
}

func (s *staticStream) Close() error {
	close(s.ch)
	return nil
}
