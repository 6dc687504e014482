package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
)

// Client fetches the upstream product list. The upstream serves the whole
// catalog in one response without pagination; filtering and slicing happen
// locally per view.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// apiProduct mirrors the upstream record; prices arrive as float dollars.
type apiProduct struct {
	ID       int            `json:"id"`
	Title    string         `json:"title"`
	Price    float64        `json:"price"`
	Category string         `json:"category"`
	Image    string         `json:"image"`
	Rating   *domain.Rating `json:"rating,omitempty"`
}

// Products fetches and maps the full catalog. A single attempt, no retry.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		return nil, fmt.Errorf("build products request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch products: unexpected status %d", resp.StatusCode)
	}

	var records []apiProduct
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, domain.Product{
			ID:         rec.ID,
			Title:      rec.Title,
			PriceCents: dollarsToCents(rec.Price),
			Category:   rec.Category,
			Image:      rec.Image,
			Rating:     rec.Rating,
		})
	}
	return products, nil
}

// dollarsToCents converts the upstream float price without float drift.
func dollarsToCents(price float64) int64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
