package topic

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrClosed is returned by Recv after the topic or subscription closed.
	ErrClosed = errors.New("topic closed")

	// ErrLagged is returned by Recv after a subscriber was evicted because
	// its buffer was full at publish time.
	ErrLagged = errors.New("subscriber lagged")
)

// Topic is a bounded broadcast channel. All methods are safe for
// concurrent use.
type Topic[T any] struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription[T]
	nextID uint64
	depth  int
	closed bool
}

// New creates a topic whose subscribers buffer up to depth messages.
func New[T any](depth int) *Topic[T] {
	if depth < 1 {
		depth = 1
	}
	return &Topic[T]{
		subs:  make(map[uint64]*Subscription[T]),
		depth: depth,
	}
}

// Subscribe registers a new subscriber. The subscription receives only
// messages published after this call returns.
func (t *Topic[T]) Subscribe() *Subscription[T] {
	t.mu.Lock()
	defer t.mu.Unlock()

	sub := &Subscription[T]{
		topic: t,
		id:    t.nextID,
		ch:    make(chan T, t.depth),
	}
	t.nextID++

	if t.closed {
		sub.err = ErrClosed
		close(sub.ch)
		return sub
	}

	t.subs[sub.id] = sub
	return sub
}

// Publish delivers msg to every live subscriber in a single total order.
// Subscribers whose buffer is full are evicted. Returns the number of
// subscribers the message was delivered to; zero is not an error.
func (t *Topic[T]) Publish(msg T) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0
	}

	delivered := 0
	for id, sub := range t.subs {
		select {
		case sub.ch <- msg:
			delivered++
		default:
			sub.err = ErrLagged
			close(sub.ch)
			delete(t.subs, id)
		}
	}
	return delivered
}

// Subscribers returns the current number of live subscribers.
func (t *Topic[T]) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Close evicts all subscribers and rejects further publishes. Idempotent.
func (t *Topic[T]) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	for id, sub := range t.subs {
		sub.err = ErrClosed
		close(sub.ch)
		delete(t.subs, id)
	}
}

// Subscription is one subscriber's receive handle.
type Subscription[T any] struct {
	topic *Topic[T]
	id    uint64
	ch    chan T

	// err is set under the topic lock before ch is closed; Recv reads it
	// only after observing the close, so the channel provides the needed
	// ordering.
	err error
}

// Recv blocks until a message arrives, the context is cancelled, or the
// subscription ends. After eviction, buffered messages are still drained
// before the terminal error (ErrLagged or ErrClosed) is returned.
func (s *Subscription[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	select {
	case msg, ok := <-s.ch:
		if !ok {
			return zero, s.err
		}
		return msg, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close detaches the subscription from the topic. Idempotent.
func (s *Subscription[T]) Close() {
	s.topic.mu.Lock()
	defer s.topic.mu.Unlock()

	if _, ok := s.topic.subs[s.id]; !ok {
		return
	}
	s.err = ErrClosed
	close(s.ch)
	delete(s.topic.subs, s.id)
}
