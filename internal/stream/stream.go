// Package stream fan-outs payment events to live subscribers (the SSE
// endpoint). Delivery is best effort: slow subscribers drop events rather
// than stall the trigger path.
package stream

import (
	"context"
	"sync"
	"time"
)

// PaymentEvent describes one executed payment for live consumers.
type PaymentEvent struct {
	PaymentID       int64     `json:"payment_id"`
	PaymentRuleID   int64     `json:"payment_rule_id"`
	Foundation      string    `json:"foundation"`
	AmountEther     string    `json:"amount_ether"`
	TransactionHash string    `json:"transaction_hash"`
	Timestamp       time.Time `json:"timestamp"`
}

// Stream fan-outs payment events to all active subscribers.
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan PaymentEvent
	next int
}

func New() *Stream {
	return &Stream{subs: make(map[int]chan PaymentEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan PaymentEvent {
	ch := make(chan PaymentEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt PaymentEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}
