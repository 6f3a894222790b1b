package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/muthii-lawrence/nyumba-hub.backend/internal/api/middleware"
	"github.com/muthii-lawrence/nyumba-hub.backend/internal/config"
	"github.com/muthii-lawrence/nyumba-hub.backend/internal/services"
)

// filterParams is the set of query parameters GET /listings forwards to the
// filter builder. Anything outside this list is ignored.
var filterParams = []string{
	"location", "county", "estate", "landlord_name",
	"property_type", "furnishing_status",
	"min_price", "max_price", "bedrooms", "bathrooms",
	"amenities",
	"parking", "garden", "balcony", "own_compound", "electricity", "internet",
}

// RestListingHandler handles REST requests for listings.
type RestListingHandler struct {
	cfg            *config.Config
	listingService services.IListingService
}

// NewRestListingHandler creates a new RestListingHandler.
func NewRestListingHandler(cfg *config.Config, listingService services.IListingService) *RestListingHandler {
	return &RestListingHandler{
		cfg:            cfg,
		listingService: listingService,
	}
}

// searchRequest is the JSON body accepted by POST /listings/search.
type searchRequest struct {
	Query   string                 `json:"query"`
	Filters map[string]interface{} `json:"filters"`
	SortBy  string                 `json:"sort_by"`
	SortDir string                 `json:"sort_dir"`
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
}

// ListListings handles GET /listings.
func (h *RestListingHandler) ListListings(c *gin.Context) {
	filters := map[string]interface{}{}
	for _, name := range filterParams {
		if value := c.Query(name); value != "" {
			filters[name] = value
		}
	}

	page := pageOptionsFromQuery(c)
	requester := middleware.IdentityFrom(c)

	result, err := h.listingService.List(c.Request.Context(), filters, page, requester)
	if err != nil {
		respondError(c, h.cfg.Environment, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchListings handles POST /listings/search.
func (h *RestListingHandler) SearchListings(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.cfg.Environment, fmt.Errorf("parse search body: %w", services.ErrInvalidInput))
		return
	}

	page := services.PageOptions{
		SortBy:  req.SortBy,
		SortDir: req.SortDir,
		Limit:   req.Limit,
		Offset:  req.Offset,
	}
	requester := middleware.IdentityFrom(c)

	result, err := h.listingService.Search(c.Request.Context(), req.Query, req.Filters, page, requester)
	if err != nil {
		respondError(c, h.cfg.Environment, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetListing handles GET /listings/:id.
func (h *RestListingHandler) GetListing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.cfg.Environment, fmt.Errorf("listing id: %w", services.ErrInvalidInput))
		return
	}

	requester := middleware.IdentityFrom(c)

	listing, err := h.listingService.Get(c.Request.Context(), id, requester)
	if err != nil {
		respondError(c, h.cfg.Environment, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// CreateListing handles POST /listings (multipart form).
func (h *RestListingHandler) CreateListing(c *gin.Context) {
	input, err := listingInputFromForm(c)
	if err != nil {
		respondError(c, h.cfg.Environment, err)
		return
	}

	requester := middleware.IdentityFrom(c)

	listing, err := h.listingService.Create(c.Request.Context(), input, formImages(c), requester)
	if err != nil {
		respondError(c, h.cfg.Environment, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// UpdateListing handles PUT /listings/:id (multipart form). The form names
// the image keys to keep in existing_images; keys left out are removed.
func (h *RestListingHandler) UpdateListing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.cfg.Environment, fmt.Errorf("listing id: %w", services.ErrInvalidInput))
		return
	}

	input, err := listingInputFromForm(c)
	if err != nil {
		respondError(c, h.cfg.Environment, err)
		return
	}

	requester := middleware.IdentityFrom(c)

	listing, err := h.listingService.Update(c.Request.Context(), id, input, keptImageKeys(c), formImages(c), requester)
	if err != nil {
		respondError(c, h.cfg.Environment, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// DeleteListing handles DELETE /listings/:id.
func (h *RestListingHandler) DeleteListing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.cfg.Environment, fmt.Errorf("listing id: %w", services.ErrInvalidInput))
		return
	}

	requester := middleware.IdentityFrom(c)

	if err := h.listingService.Delete(c.Request.Context(), id, requester); err != nil {
		respondError(c, h.cfg.Environment, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Listing deleted"})
}

// MyListings handles GET /listings/landlord/my-listings. Returns every
// listing owned by the caller, including unavailable ones.
func (h *RestListingHandler) MyListings(c *gin.Context) {
	requester := middleware.IdentityFrom(c)

	listings, err := h.listingService.ListByOwner(c.Request.Context(), requester)
	if err != nil {
		respondError(c, h.cfg.Environment, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// LandlordListings handles GET /listings/landlord/:landlordId. Only
// available listings are returned regardless of the caller.
func (h *RestListingHandler) LandlordListings(c *gin.Context) {
	landlordID := c.Param("landlordId")
	if landlordID == "" {
		respondError(c, h.cfg.Environment, fmt.Errorf("landlord id: %w", services.ErrInvalidInput))
		return
	}

	listings, err := h.listingService.ListByOwnerID(c.Request.Context(), landlordID)
	if err != nil {
		respondError(c, h.cfg.Environment, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// listingInputFromForm reads the multipart form fields into a ListingInput.
// Absent fields come back as zero values, matching the full-replace update
// contract.
func listingInputFromForm(c *gin.Context) (services.ListingInput, error) {
	var input services.ListingInput
	var err error

	input.Title = c.PostForm("title")
	input.Description = c.PostForm("description")
	input.PropertyType = c.PostForm("property_type")
	input.Location = c.PostForm("location")
	input.County = c.PostForm("county")
	input.Estate = c.PostForm("estate")
	input.FurnishingStatus = c.PostForm("furnishing_status")

	if input.Price, err = formInt64(c, "price"); err != nil {
		return input, err
	}
	if input.Bedrooms, err = formInt(c, "bedrooms"); err != nil {
		return input, err
	}
	if input.Bathrooms, err = formInt(c, "bathrooms"); err != nil {
		return input, err
	}

	if raw := c.PostForm("amenities"); raw != "" {
		for _, a := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(a); trimmed != "" {
				input.Amenities = append(input.Amenities, trimmed)
			}
		}
	}

	input.Parking = formBool(c, "parking")
	input.Garden = formBool(c, "garden")
	input.Balcony = formBool(c, "balcony")
	input.OwnCompound = formBool(c, "own_compound")
	input.Electricity = formBool(c, "electricity")
	input.Internet = formBool(c, "internet")
	input.IsAvailable = formBool(c, "is_available")

	return input, nil
}

// formImages collects the uploaded files. Both images[] and images are
// accepted as field names.
func formImages(c *gin.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	if files := form.File["images[]"]; len(files) > 0 {
		return files
	}
	return form.File["images"]
}

// keptImageKeys returns the existing image keys the update wants to retain.
// The field may repeat or hold a comma-separated list.
func keptImageKeys(c *gin.Context) []string {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}

	var keys []string
	values := form.Value["existing_images[]"]
	if len(values) == 0 {
		values = form.Value["existing_images"]
	}
	for _, value := range values {
		for _, key := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(key); trimmed != "" {
				keys = append(keys, trimmed)
			}
		}
	}
	return keys
}

func formInt64(c *gin.Context, name string) (int64, error) {
	raw := c.PostForm(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %q must be a whole number: %w", name, services.ErrInvalidInput)
	}
	return value, nil
}

func formInt(c *gin.Context, name string) (int, error) {
	raw := c.PostForm(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("field %q must be a whole number: %w", name, services.ErrInvalidInput)
	}
	return value, nil
}

// formBool matches the filter builder's coercion: the literal "true" means
// true, anything else false.
func formBool(c *gin.Context, name string) bool {
	return c.PostForm(name) == "true"
}

func pageOptionsFromQuery(c *gin.Context) services.PageOptions {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return services.PageOptions{
		SortBy:  c.Query("sort_by"),
		SortDir: c.Query("sort_dir"),
		Limit:   limit,
		Offset:  offset,
	}
}

func RegisterRestListingRoutes(r *gin.Engine, handler *RestListingHandler) {
	r.GET("/listings", handler.ListListings)
	r.POST("/listings/search", handler.SearchListings)
	r.GET("/listings/landlord/my-listings", middleware.RequireIdentity(), handler.MyListings)
	r.GET("/listings/landlord/:landlordId", handler.LandlordListings)
	r.GET("/listings/:id", handler.GetListing)
	r.POST("/listings", middleware.RequireIdentity(), handler.CreateListing)
	r.PUT("/listings/:id", middleware.RequireIdentity(), handler.UpdateListing)
	r.DELETE("/listings/:id", middleware.RequireIdentity(), handler.DeleteListing)
}
