package catalog

import "storefront-api/internal/domain"

// View names match the storefront's catalog sections.
const (
	ViewFeatured     = "featured"
	ViewNewArrivals  = "new-arrivals"
	ViewPopular      = "popular"
	ViewLimitedOffer = "limited-offer"
)

const (
	featuredLimit        = 8
	popularLimit         = 4
	popularMinRating     = 4.0
	limitedOfferLimit    = 2
	limitedOfferMaxCents = 5000
	newArrivalCategory   = "men's clothing"
)

// Views lists the known view names.
func Views() []string {
	return []string{ViewFeatured, ViewNewArrivals, ViewPopular, ViewLimitedOffer}
}

// FilterView applies a view's predicate and slice to the full product list.
// The second return value is false for an unknown view name.
func FilterView(view string, products []domain.Product) ([]domain.Product, bool) {
	switch view {
	case ViewFeatured:
		return limit(products, featuredLimit), true
	case ViewNewArrivals:
		var out []domain.Product
		for _, p := range products {
			if p.Category == newArrivalCategory {
				out = append(out, p)
			}
		}
		return out, true
	case ViewPopular:
		var out []domain.Product
		for _, p := range products {
			if p.Rating != nil && p.Rating.Rate >= popularMinRating {
				out = append(out, p)
			}
		}
		return limit(out, popularLimit), true
	case ViewLimitedOffer:
		var out []domain.Product
		for _, p := range products {
			if p.PriceCents < limitedOfferMaxCents {
				out = append(out, p)
			}
		}
		return limit(out, limitedOfferLimit), true
	default:
		return nil, false
	}
}

func limit(products []domain.Product, n int) []domain.Product {
	if len(products) > n {
		return products[:n]
	}
	return products
}
