package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/badge"
	"storefront-api/internal/domain"
	cartsvc "storefront-api/internal/service/cart"
)

type cartResponse struct {
	Lines   []domain.CartLine `json:"lines"`
	Summary cartsvc.Summary   `json:"summary"`
	Empty   bool              `json:"empty"`
}

func toCartResponse(cart domain.Cart) cartResponse {
	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return cartResponse{
		Lines:   lines,
		Summary: cartsvc.Summarize(cart),
		Empty:   cart.IsEmpty(),
	}
}

func cartPageHandler(carts *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart := carts.Read(c.Request.Context(), sessionID(c))
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

// Quantity below 1 is clamped by the service, not rejected.
type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func setQuantityHandler(carts *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "product id must be an integer"})
			return
		}
		var req setQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}

		cart, err := carts.SetQuantity(c.Request.Context(), sessionID(c), productID, req.Quantity)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "product not in cart"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func removeLineHandler(carts *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "product id must be an integer"})
			return
		}

		cart, err := carts.RemoveLine(c.Request.Context(), sessionID(c), productID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func cartCountHandler(carts *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart := carts.Read(c.Request.Context(), sessionID(c))
		c.JSON(http.StatusOK, gin.H{"itemCount": cart.TotalItemCount()})
	}
}

// cartEventsHandler streams badge counts over SSE. The current count is sent
// first so a page never flashes a stale badge, then every mutation from any
// view in the same session follows.
func cartEventsHandler(carts *cartsvc.Service, broadcaster *badge.Broadcaster) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := sessionID(c)
		counts, cancel := broadcaster.Subscribe(sid)
		defer cancel()

		c.Header("Cache-Control", "no-cache")
		c.SSEvent("count", carts.Read(c.Request.Context(), sid).TotalItemCount())
		c.Writer.Flush()

		c.Stream(func(w io.Writer) bool {
			select {
			case count, ok := <-counts:
				if !ok {
					return false
				}
				c.SSEvent("count", count)
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}
