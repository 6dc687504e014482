package httpserver

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// buildRouter wires routes for the storefront API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(corsOrigins) == 1 && corsOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = corsOrigins
		corsCfg.AllowCredentials = true
	}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")
	api.Use(sessionMiddleware())
	{
		api.GET("/views/:view", viewPageHandler(deps.Views))
		api.POST("/views/:view/items/:id", addToCartHandler(deps.Views))
		api.POST("/views/:view/items/:id/increase", increaseHandler(deps.Views))
		api.POST("/views/:view/items/:id/decrease", decreaseHandler(deps.Views))

		api.GET("/cart", cartPageHandler(deps.Carts))
		api.PUT("/cart/items/:id", setQuantityHandler(deps.Carts))
		api.DELETE("/cart/items/:id", removeLineHandler(deps.Carts))
		api.GET("/cart/count", cartCountHandler(deps.Carts))
		api.GET("/cart/events", cartEventsHandler(deps.Carts, deps.Badge))
	}

	return router
}
