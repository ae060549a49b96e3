package notify

import (
	"sync"

	"scanlane/internal/domain"
)

// Update is the immutable snapshot published after every committed
// mutation: the owning user's cart plus the current catalog.
type Update struct {
	UserID  string           `json:"userId"`
	Cart    domain.CartView  `json:"cart"`
	Catalog []domain.Product `json:"catalog"`
}

// Broker fans snapshots out to in-process subscribers. Each subscriber
// holds a capacity-1 channel; a slow subscriber has its stale snapshot
// replaced by the newest one rather than blocking the publisher.
type Broker struct {
	mu   sync.Mutex
	subs map[*Subscriber]struct{}
}

type Subscriber struct {
	ch chan Update
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[*Subscriber]struct{})}
}

func (b *Broker) Subscribe() *Subscriber {
	s := &Subscriber{ch: make(chan Update, 1)}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Unsubscribe closes the subscriber's channel. Safe to call once per
// subscriber; Publish and Unsubscribe serialize on the broker lock.
func (b *Broker) Unsubscribe(s *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.ch)
	}
}

// Publish delivers u to every subscriber, dropping a subscriber's
// undelivered snapshot when a newer one arrives.
func (b *Broker) Publish(u Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs {
		select {
		case s.ch <- u:
		default:
			select {
			case <-s.ch:
			default:
			}
			select {
			case s.ch <- u:
			default:
			}
		}
	}
}

// C yields snapshots, newest-wins. Closed on Unsubscribe.
func (s *Subscriber) C() <-chan Update { return s.ch }
