package domain

// Product is one record from the upstream catalog API. Products are never
// persisted by the storefront; cart lines carry their own snapshot of the
// fields they need.
type Product struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	PriceCents int64   `json:"priceCents"`
	Category   string  `json:"category"`
	Image      string  `json:"image"`
	Rating     *Rating `json:"rating,omitempty"`
}

type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}
