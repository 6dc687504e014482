package badge

import "sync"

// Broadcaster fans the cart's total item count out to every subscriber of a
// session, so all open pages re-render their badge on any mutation from any
// view. A slow subscriber loses older counts rather than blocking a cart
// mutation.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

type subscriber struct {
	ch chan int
}

func New() *Broadcaster {
	return &Broadcaster{subs: make(map[string]map[*subscriber]struct{})}
}

// Publish delivers count to every subscriber of sessionID.
func (b *Broadcaster) Publish(sessionID string, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs[sessionID] {
		select {
		case sub.ch <- count:
		default:
			// Full buffer: evict the oldest pending count for the newest.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- count:
			default:
			}
		}
	}
}

// Subscribe registers a listener for sessionID's counts. The cancel func
// unregisters and closes the channel; calling it more than once is safe.
func (b *Broadcaster) Subscribe(sessionID string) (<-chan int, func()) {
	sub := &subscriber{ch: make(chan int, 8)}

	b.mu.Lock()
	set, ok := b.subs[sessionID]
	if !ok {
		set = make(map[*subscriber]struct{})
		b.subs[sessionID] = set
	}
	set[sub] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if set, ok := b.subs[sessionID]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(b.subs, sessionID)
				}
			}
			b.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}
