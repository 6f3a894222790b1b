package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/muthii-lawrence/nyumba-hub.backend/internal/api/handlers"
	"github.com/muthii-lawrence/nyumba-hub.backend/internal/api/middleware"
	"github.com/muthii-lawrence/nyumba-hub.backend/internal/config"
	"github.com/muthii-lawrence/nyumba-hub.backend/internal/identity"
	"github.com/muthii-lawrence/nyumba-hub.backend/internal/services"
	"github.com/muthii-lawrence/nyumba-hub.backend/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *gorm.DB, resolver identity.IResolver, objectStorage storage.IObjectStorage) *gin.Engine {
	// Initialize services needed by API handlers here.
	imageService := services.NewImageService(cfg, objectStorage)
	listingService := services.NewListingService(db, cfg, imageService)
	favoritesService := services.NewFavoritesService(db, imageService)

	r := gin.Default()

	// Apply global middleware first (order matters).
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.IdentityMiddleware(resolver))

	// Initialize handlers
	restListingHandler := handlers.NewRestListingHandler(cfg, listingService)
	restFavoritesHandler := handlers.NewRestFavoritesHandler(cfg, favoritesService)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterRestListingRoutes(r, restListingHandler)
	handlers.RegisterRestFavoritesRoutes(r, restFavoritesHandler)

	return r
}
