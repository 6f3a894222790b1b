package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/muthii-lawrence/nyumba-hub.backend/internal/api/middleware"
	"github.com/muthii-lawrence/nyumba-hub.backend/internal/config"
	"github.com/muthii-lawrence/nyumba-hub.backend/internal/services"
)

// RestFavoritesHandler handles REST requests for a user's favorites.
type RestFavoritesHandler struct {
	cfg              *config.Config
	favoritesService services.IFavoritesService
}

// NewRestFavoritesHandler creates a new RestFavoritesHandler.
func NewRestFavoritesHandler(cfg *config.Config, favoritesService services.IFavoritesService) *RestFavoritesHandler {
	return &RestFavoritesHandler{
		cfg:              cfg,
		favoritesService: favoritesService,
	}
}

// ListFavorites handles GET /favorites.
func (h *RestFavoritesHandler) ListFavorites(c *gin.Context) {
	requester := middleware.IdentityFrom(c)

	favorites, err := h.favoritesService.List(c.Request.Context(), requester)
	if err != nil {
		respondError(c, h.cfg.Environment, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"favorites": favorites,
		"total":     len(favorites),
	})
}

// AddFavorite handles POST /favorites with body {"listing_id": "..."}.
func (h *RestFavoritesHandler) AddFavorite(c *gin.Context) {
	var req struct {
		ListingID string `json:"listing_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.cfg.Environment, fmt.Errorf("parse favorite body: %w", services.ErrInvalidInput))
		return
	}

	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		respondError(c, h.cfg.Environment, fmt.Errorf("listing_id: %w", services.ErrInvalidInput))
		return
	}

	requester := middleware.IdentityFrom(c)

	favorite, err := h.favoritesService.Add(c.Request.Context(), requester, listingID)
	if err != nil {
		respondError(c, h.cfg.Environment, err)
		return
	}

	c.JSON(http.StatusCreated, favorite)
}

// RemoveFavorite handles DELETE /favorites/:listingId. Removing a listing
// that is not favorited succeeds quietly.
func (h *RestFavoritesHandler) RemoveFavorite(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("listingId"))
	if err != nil {
		respondError(c, h.cfg.Environment, fmt.Errorf("listing id: %w", services.ErrInvalidInput))
		return
	}

	requester := middleware.IdentityFrom(c)

	if err := h.favoritesService.Remove(c.Request.Context(), requester, listingID); err != nil {
		respondError(c, h.cfg.Environment, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Favorite removed"})
}

// CheckFavorite handles GET /favorites/check/:listingId.
func (h *RestFavoritesHandler) CheckFavorite(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("listingId"))
	if err != nil {
		respondError(c, h.cfg.Environment, fmt.Errorf("listing id: %w", services.ErrInvalidInput))
		return
	}

	requester := middleware.IdentityFrom(c)

	favorited, err := h.favoritesService.Check(c.Request.Context(), requester, listingID)
	if err != nil {
		respondError(c, h.cfg.Environment, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_favorite": favorited})
}

func RegisterRestFavoritesRoutes(r *gin.Engine, handler *RestFavoritesHandler) {
	favorites := r.Group("/favorites", middleware.RequireIdentity())
	favorites.GET("", handler.ListFavorites)
	favorites.POST("", handler.AddFavorite)
	favorites.GET("/check/:listingId", handler.CheckFavorite)
	favorites.DELETE("/:listingId", handler.RemoveFavorite)
}
