package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
	viewsvc "storefront-api/internal/service/view"
)

func viewPageHandler(views *viewsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := views.Load(c.Request.Context(), sessionID(c), c.Param("view"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "unknown view"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

type viewMutation func(ctx context.Context, sessionID, view string, productID int) (viewsvc.Mutation, error)

func addToCartHandler(views *viewsvc.Service) gin.HandlerFunc {
	return viewMutationHandler(views.Add)
}

func increaseHandler(views *viewsvc.Service) gin.HandlerFunc {
	return viewMutationHandler(views.Increase)
}

func decreaseHandler(views *viewsvc.Service) gin.HandlerFunc {
	return viewMutationHandler(views.Decrease)
}

func viewMutationHandler(apply viewMutation) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "product id must be an integer"})
			return
		}

		result, err := apply(c.Request.Context(), sessionID(c), c.Param("view"), productID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "unknown view or product"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
