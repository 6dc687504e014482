package domain

// CartLine is one product's quantity plus the display snapshot captured when
// the product was first added. The snapshot is never re-checked against the
// catalog, so an upstream price change does not touch existing lines.
type CartLine struct {
	ProductID      int     `json:"productId"`
	Title          string  `json:"title"`
	UnitPriceCents int64   `json:"unitPriceCents"`
	Image          string  `json:"image"`
	Rating         *Rating `json:"rating,omitempty"`
	Quantity       int     `json:"quantity"`
}

// Cart is the per-session aggregate: lines unique by product id, kept in
// insertion order. A line with quantity 0 must not exist; it is removed
// instead of being stored.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// Line returns the line for productID, or nil when the product is not in the
// cart. The pointer aliases the cart's backing slice.
func (c *Cart) Line(productID int) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// RemoveLine deletes the line for productID, preserving the order of the
// remaining lines. Removing an absent product is a no-op.
func (c *Cart) RemoveLine(productID int) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// TotalItemCount sums quantities across all lines.
func (c Cart) TotalItemCount() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
