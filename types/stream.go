package types

import (
	"context"
	"sync"
)

// DefaultChunkSize is the chunk size announced by ONU scans.
const DefaultChunkSize = 200

// ONUStream is a streaming scan result: a header (Total, ChunkSize) followed
// by ONU projections produced in the background.
type ONUStream struct {
	// Total is the number of ONUs the scan will yield
	Total int

	// ChunkSize is the batch size consumers should page by
	ChunkSize int

	items  chan ONU
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

// ProduceFunc emits ONUs through yield until done. yield returns an error
// when the consumer went away.
type ProduceFunc func(ctx context.Context, yield func(ONU) error) error

// NewONUStream starts produce in a goroutine. Cancelling ctx or calling
// Close abandons the stream.
func NewONUStream(ctx context.Context, total, chunkSize int, produce ProduceFunc) *ONUStream {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &ONUStream{
		Total:     total,
		ChunkSize: chunkSize,
		items:     make(chan ONU, chunkSize),
		cancel:    cancel,
	}
	go func() {
		defer close(s.items)
		err := produce(ctx, func(o ONU) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case s.items <- o:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
		}
	}()
	return s
}

// Items returns the channel of projections. It is closed when the scan ends.
func (s *ONUStream) Items() <-chan ONU {
	return s.items
}

// Next returns the next projection, or false once the stream is drained.
func (s *ONUStream) Next() (ONU, bool) {
	o, ok := <-s.items
	return o, ok
}

// Err reports the error that ended the scan. Valid after Items is closed.
func (s *ONUStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close abandons the stream and waits for the producer to stop.
func (s *ONUStream) Close() {
	s.cancel()
	for range s.items {
	}
}

// Collect drains the stream into a slice. Intended for tests and small OLTs.
func (s *ONUStream) Collect() ([]ONU, error) {
	out := make([]ONU, 0, s.Total)
	for o := range s.items {
		out = append(out, o)
	}
	return out, s.Err()
}
