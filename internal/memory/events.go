package memory

import "sync"

// broadcaster fans events out to subscribers over buffered channels.
// Delivery is conflated: a slow subscriber keeps only the newest event,
// so publishers never block on consumers.
type broadcaster[T any] struct {
	mu   sync.Mutex
	subs map[int]chan T
	next int
}

func newBroadcaster[T any]() *broadcaster[T] {
	return &broadcaster[T]{subs: make(map[int]chan T)}
}

// subscribe registers a new subscriber. The cancel function removes the
// subscription and closes its channel; it is safe to call more than once.
func (b *broadcaster[T]) subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan T, 1)
	return ch, b.add(ch)
}

// subscribeInit registers a subscriber with initial queued as its first
// event. The buffer is filled before the subscription becomes visible to
// publishers, so a concurrent publish can only replace initial, never
// precede it.
func (b *broadcaster[T]) subscribeInit(initial T) (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan T, 1)
	ch <- initial
	return ch, b.add(ch)
}

// add registers ch and returns its cancel function. Called with mu held.
func (b *broadcaster[T]) add(ch chan T) func() {
	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

// publish delivers v to every subscriber, replacing any undelivered
// previous event.
func (b *broadcaster[T]) publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
			// Stale event still queued: drop it and queue the new one.
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}
