// Package recorder holds the client-side recording state machine.
//
// A Session moves between Idle and Recording. Fragments arriving from
// the capture stream accumulate in memory; Stop finalizes them into a
// single Blob for playback and upload. Sessions are instance-scoped:
// several recorder widgets on one page each own their session and
// cannot corrupt each other.
package recorder

import (
	"context"
	"errors"
	"sync"
)

type State int

const (
	StateIdle State = iota
	StateRecording
)

func (s State) String() string {
	if s == StateRecording {
		return "recording"
	}
	return "idle"
}

// Blob is the finalized audio object produced by one recording.
type Blob struct {
	Data     []byte
	MIMEType string
}

// capture is the per-recording accumulation. Each Start allocates a
// fresh one, so a late fragment from a superseded recording can never
// leak into the next.
type capture struct {
	mu     sync.Mutex
	chunks [][]byte
	stream Stream
	done   chan struct{}
}

func (c *capture) pump() {
	for chunk := range c.stream.Chunks() {
		if len(chunk) == 0 {
			continue
		}
		c.mu.Lock()
		c.chunks = append(c.chunks, chunk)
		c.mu.Unlock()
	}
	close(c.done)
}

func (c *capture) finalize() *Blob {
	c.mu.Lock()
	defer c.mu.Unlock()
	var size int
	for _, chunk := range c.chunks {
		size += len(chunk)
	}
	data := make([]byte, 0, size)
	for _, chunk := range c.chunks {
		data = append(data, chunk...)
	}
	return &Blob{Data: data, MIMEType: c.stream.MIMEType()}
}

type Session struct {
	source Source

	mu      sync.Mutex
	state   State
	current *capture
	blob    *Blob
}

func NewSession(source Source) *Session {
	return &Session{source: source}
}

// Start opens the capture source and begins accumulating fragments.
// Starting an already-recording session is a no-op. A failed open
// (permission denied, device unavailable) leaves the session idle with
// its previous blob intact.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateRecording {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	stream, err := s.source.Open(ctx)
	if err != nil {
		if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrDeviceUnavailable) {
			return err
		}
		return errors.Join(ErrDeviceUnavailable, err)
	}

	c := &capture{stream: stream, done: make(chan struct{})}

	s.mu.Lock()
	if s.state == StateRecording {
		// Lost the race against another Start; treat as the no-op case.
		s.mu.Unlock()
		_ = stream.Close()
		return nil
	}
	s.state = StateRecording
	s.current = c
	s.blob = nil
	s.mu.Unlock()

	go c.pump()
	return nil
}

// Stop finalizes the accumulated fragments into a Blob and returns
// the session to Idle. Stopping an idle session is a no-op returning
// nil.
func (s *Session) Stop() *Blob {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return nil
	}
	c := s.current
	s.state = StateIdle
	s.current = nil
	s.mu.Unlock()

	_ = c.stream.Close()
	<-c.done

	blob := c.finalize()

	s.mu.Lock()
	s.blob = blob
	s.mu.Unlock()
	return blob
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Blob returns the last finalized recording, or nil if none exists or
// a new recording has started since.
func (s *Session) Blob() *Blob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blob
}
