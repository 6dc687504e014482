package cart

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"log"
	"sync"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository/session"
)

// Shipping is a flat threshold rule: free above the threshold, a flat fee
// below it.
const (
	freeShippingThresholdCents int64 = 10000
	flatShippingCents          int64 = 1000
)

// Publisher receives the new total item count after every cart mutation.
type Publisher interface {
	Publish(sessionID string, count int)
}

// lockShards bounds the lock table; sessions hashing to the same shard
// serialize against each other, which only costs a little contention.
const lockShards = 64

// Service owns the canonical per-session cart. Every mutation funnels through
// a read-modify-write against the session slot, serialized per session by a
// sharded lock so overlapping requests from the same shopper cannot lose
// updates.
type Service struct {
	repo   session.Repository
	badge  Publisher
	logger *log.Logger

	locks [lockShards]sync.Mutex
}

func New(repo session.Repository, badge Publisher, logger *log.Logger) *Service {
	return &Service{repo: repo, badge: badge, logger: logger}
}

func (s *Service) sessionLock(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%lockShards]
}

// Read returns the current persisted cart. A missing slot or a malformed
// payload reads as an empty cart, never as an error.
func (s *Service) Read(ctx context.Context, sessionID string) domain.Cart {
	payload, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && s.logger != nil {
			s.logger.Printf("read cart slot: %v", err)
		}
		return domain.Cart{}
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(payload, &lines); err != nil {
		if s.logger != nil {
			s.logger.Printf("discarding malformed cart payload: %v", err)
		}
		return domain.Cart{}
	}

	cart := domain.Cart{Lines: make([]domain.CartLine, 0, len(lines))}
	for _, line := range lines {
		if line.Quantity < 1 {
			continue
		}
		cart.Lines = append(cart.Lines, line)
	}
	return cart
}

// Write persists the full cart, replacing any prior value. An empty cart
// clears the slot instead of storing an empty list.
func (s *Service) Write(ctx context.Context, sessionID string, cart domain.Cart) error {
	if cart.IsEmpty() {
		return s.repo.Delete(ctx, sessionID)
	}
	payload, err := json.Marshal(cart.Lines)
	if err != nil {
		return err
	}
	return s.repo.Put(ctx, sessionID, payload)
}

// UpsertLine applies a quantity delta for productID. An existing line's
// quantity is clamped at 0 and removed when it reaches 0; an absent line is
// created from snapshot when delta is positive, and ignored otherwise. The
// result is written back before returning.
func (s *Service) UpsertLine(ctx context.Context, sessionID string, productID int, delta int, snapshot domain.CartLine) (domain.Cart, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	cart := s.Read(ctx, sessionID)

	switch line := cart.Line(productID); {
	case line != nil:
		quantity := line.Quantity + delta
		if quantity <= 0 {
			cart.RemoveLine(productID)
		} else {
			line.Quantity = quantity
		}
	case delta > 0:
		snapshot.ProductID = productID
		snapshot.Quantity = delta
		cart.Lines = append(cart.Lines, snapshot)
	default:
		// Nothing to remove and nothing to add.
		return cart, nil
	}

	if err := s.Write(ctx, sessionID, cart); err != nil {
		return cart, err
	}
	s.publish(sessionID, cart)
	return cart, nil
}

// SetQuantity replaces a line's quantity, clamped to at least 1. The cart
// page's stepper never drops a line to 0; removal is a distinct action.
func (s *Service) SetQuantity(ctx context.Context, sessionID string, productID, quantity int) (domain.Cart, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	cart := s.Read(ctx, sessionID)
	line := cart.Line(productID)
	if line == nil {
		return cart, domain.ErrNotFound
	}
	if quantity < 1 {
		quantity = 1
	}
	line.Quantity = quantity

	if err := s.Write(ctx, sessionID, cart); err != nil {
		return cart, err
	}
	s.publish(sessionID, cart)
	return cart, nil
}

// RemoveLine deletes a line unconditionally. Removing an absent product
// leaves the cart unchanged.
func (s *Service) RemoveLine(ctx context.Context, sessionID string, productID int) (domain.Cart, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	cart := s.Read(ctx, sessionID)
	cart.RemoveLine(productID)

	if err := s.Write(ctx, sessionID, cart); err != nil {
		return cart, err
	}
	s.publish(sessionID, cart)
	return cart, nil
}

func (s *Service) publish(sessionID string, cart domain.Cart) {
	if s.badge != nil {
		s.badge.Publish(sessionID, cart.TotalItemCount())
	}
}

// Summary holds the aggregate values for the cart page.
type Summary struct {
	SubtotalCents int64 `json:"subtotalCents"`
	ShippingCents int64 `json:"shippingCents"`
	TotalCents    int64 `json:"totalCents"`
	ItemCount     int   `json:"itemCount"`
}

// Summarize computes subtotal, shipping and total for the cart page. An
// empty cart has zero totals; the page renders its empty-cart affordance
// instead.
func Summarize(cart domain.Cart) Summary {
	if cart.IsEmpty() {
		return Summary{}
	}

	var subtotal int64
	for _, line := range cart.Lines {
		subtotal += line.UnitPriceCents * int64(line.Quantity)
	}
	var shipping int64
	if subtotal <= freeShippingThresholdCents {
		shipping = flatShippingCents
	}
	return Summary{
		SubtotalCents: subtotal,
		ShippingCents: shipping,
		TotalCents:    subtotal + shipping,
		ItemCount:     cart.TotalItemCount(),
	}
}
