package view

import (
	"context"
	"log"

	"storefront-api/internal/catalog"
	"storefront-api/internal/domain"
)

// Catalog supplies the full upstream product list.
type Catalog interface {
	Products(ctx context.Context) ([]domain.Product, error)
}

// CartStore is the slice of the cart service a projection needs: seeding at
// load time and the single quantity-delta mutation primitive.
type CartStore interface {
	Read(ctx context.Context, sessionID string) domain.Cart
	UpsertLine(ctx context.Context, sessionID string, productID, delta int, snapshot domain.CartLine) (domain.Cart, error)
}

// Service builds per-view projections of the cart: each catalog view's
// product subset annotated with that session's in-cart state.
type Service struct {
	catalog Catalog
	carts   CartStore
	logger  *log.Logger
}

func New(cat Catalog, carts CartStore, logger *log.Logger) *Service {
	return &Service{catalog: cat, carts: carts, logger: logger}
}

// Item is one product in a view, annotated with the session's cart state.
type Item struct {
	domain.Product
	InCart   bool `json:"inCart"`
	Quantity int  `json:"quantity"`
}

// Page is a view's product subset seeded from the current cart, plus the
// cart-wide item count for the navigation badge.
type Page struct {
	View      string `json:"view"`
	Items     []Item `json:"items"`
	ItemCount int    `json:"itemCount"`
}

// Mutation is the result of an add/increase/decrease on a view item.
type Mutation struct {
	Item      Item `json:"item"`
	ItemCount int  `json:"itemCount"`
}

// Load fetches the view's catalog subset and seeds every item's quantity and
// in-cart flag from the session's cart. An unknown view is ErrNotFound; a
// failed catalog fetch degrades to an empty page.
func (s *Service) Load(ctx context.Context, sessionID, view string) (Page, error) {
	products, ok := s.subset(ctx, view)
	if !ok {
		return Page{}, domain.ErrNotFound
	}

	cart := s.carts.Read(ctx, sessionID)
	items := make([]Item, 0, len(products))
	for _, p := range products {
		item := Item{Product: p}
		if line := cart.Line(p.ID); line != nil {
			item.InCart = true
			item.Quantity = line.Quantity
		}
		items = append(items, item)
	}

	return Page{View: view, Items: items, ItemCount: cart.TotalItemCount()}, nil
}

// Add puts one unit of the product in the cart. An existing line is
// incremented by exactly 1, never re-created, so adding from two views
// cannot double-count.
func (s *Service) Add(ctx context.Context, sessionID, view string, productID int) (Mutation, error) {
	return s.step(ctx, sessionID, view, productID, +1)
}

// Increase adds one unit to the product's line.
func (s *Service) Increase(ctx context.Context, sessionID, view string, productID int) (Mutation, error) {
	return s.step(ctx, sessionID, view, productID, +1)
}

// Decrease removes one unit; at quantity 0 the line is dropped and the item
// reverts to its not-in-cart state.
func (s *Service) Decrease(ctx context.Context, sessionID, view string, productID int) (Mutation, error) {
	return s.step(ctx, sessionID, view, productID, -1)
}

func (s *Service) step(ctx context.Context, sessionID, view string, productID, delta int) (Mutation, error) {
	products, ok := s.subset(ctx, view)
	if !ok {
		return Mutation{}, domain.ErrNotFound
	}

	var product *domain.Product
	for i := range products {
		if products[i].ID == productID {
			product = &products[i]
			break
		}
	}
	// Only a positive delta needs a catalog snapshot; a decrease works off
	// the stored line alone, so an unresolvable product does not block it.
	var snapshot domain.CartLine
	if product != nil {
		snapshot = snapshotFromProduct(*product)
	} else if delta > 0 {
		return Mutation{}, domain.ErrNotFound
	}

	cart, err := s.carts.UpsertLine(ctx, sessionID, productID, delta, snapshot)
	if err != nil {
		return Mutation{}, err
	}

	var item Item
	line := cart.Line(productID)
	switch {
	case product != nil:
		item.Product = *product
	case line != nil:
		item.Product = domain.Product{
			ID:         productID,
			Title:      line.Title,
			PriceCents: line.UnitPriceCents,
			Image:      line.Image,
			Rating:     line.Rating,
		}
	default:
		item.Product = domain.Product{ID: productID}
	}
	if line != nil {
		item.InCart = true
		item.Quantity = line.Quantity
	}
	return Mutation{Item: item, ItemCount: cart.TotalItemCount()}, nil
}

func (s *Service) subset(ctx context.Context, view string) ([]domain.Product, bool) {
	products, err := s.catalog.Products(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("load catalog: %v", err)
		}
		products = nil
	}
	return catalog.FilterView(view, products)
}

// snapshotFromProduct captures the display fields a cart line keeps. The
// snapshot is immutable after insert; later catalog changes never reach it.
func snapshotFromProduct(p domain.Product) domain.CartLine {
	return domain.CartLine{
		ProductID:      p.ID,
		Title:          p.Title,
		UnitPriceCents: p.PriceCents,
		Image:          p.Image,
		Rating:         p.Rating,
	}
}
