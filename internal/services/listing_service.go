package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/muthii-lawrence/nyumba-hub.backend/internal/config"
	"github.com/muthii-lawrence/nyumba-hub.backend/internal/models"
)

// ListingInput carries the mutable fields of a listing. Create and update
// share it: an update is a full replace, so absent fields persist as their
// zero values, exactly like a create.
type ListingInput struct {
	Title            string
	Description      string
	Price            int64
	PropertyType     string
	Bedrooms         int
	Bathrooms        int
	Location         string
	County           string
	Estate           string
	Amenities        []string
	FurnishingStatus string
	Parking          bool
	Garden           bool
	Balcony          bool
	OwnCompound      bool
	Electricity      bool
	Internet         bool
	IsAvailable      bool
}

// IListingService defines the interface for listing-related operations.
type IListingService interface {
	List(ctx context.Context, filters map[string]interface{}, page PageOptions, requester *models.Identity) (*models.ListingPage, error)
	Search(ctx context.Context, query string, filters map[string]interface{}, page PageOptions, requester *models.Identity) (*models.ListingPage, error)
	Get(ctx context.Context, id uuid.UUID, requester *models.Identity) (*models.ListingResponse, error)
	Create(ctx context.Context, input ListingInput, images []*multipart.FileHeader, requester *models.Identity) (*models.ListingResponse, error)
	Update(ctx context.Context, id uuid.UUID, input ListingInput, keepImages []string, images []*multipart.FileHeader, requester *models.Identity) (*models.ListingResponse, error)
	Delete(ctx context.Context, id uuid.UUID, requester *models.Identity) error
	ListByOwner(ctx context.Context, requester *models.Identity) ([]models.ListingResponse, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]models.ListingResponse, error)
}

// listingService implements IListingService.
type listingService struct {
	db     *gorm.DB
	cfg    *config.Config
	images IImageService
}

// NewListingService creates a new ListingService.
func NewListingService(db *gorm.DB, cfg *config.Config, images IImageService) IListingService {
	return &listingService{db: db, cfg: cfg, images: images}
}

// List returns listings matching the given filters. Unavailable listings
// are visible only to their owner.
func (s *listingService) List(ctx context.Context, filters map[string]interface{}, page PageOptions, requester *models.Identity) (*models.ListingPage, error) {
	return s.query(ctx, "", filters, page, requester)
}

// Search is List plus a free-text OR-match across title, description,
// location and landlord name.
func (s *listingService) Search(ctx context.Context, query string, filters map[string]interface{}, page PageOptions, requester *models.Identity) (*models.ListingPage, error) {
	return s.query(ctx, query, filters, page, requester)
}

func (s *listingService) query(ctx context.Context, freeText string, filters map[string]interface{}, page PageOptions, requester *models.Identity) (*models.ListingPage, error) {
	preds, err := BuildListingPredicates(filters, freeText)
	if err != nil {
		return nil, err
	}
	page = page.normalize()

	q := s.db.WithContext(ctx).Model(&models.Listing{})

	// Availability is forced before any user-supplied filter and cannot be
	// overridden by one. Owners still see their own unavailable rows.
	if requester != nil {
		q = q.Where("(is_available = ? OR landlord_id = ?)", true, requester.ID)
	} else {
		q = q.Where("is_available = ?", true)
	}

	q = applyPredicates(q, preds)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}

	var rows []models.Listing
	err = q.Order(page.orderClause()).
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}

	result := &models.ListingPage{
		Listings: make([]models.ListingResponse, 0, len(rows)),
		Total:    total,
		Limit:    page.Limit,
		Offset:   page.Offset,
	}
	for i := range rows {
		result.Listings = append(result.Listings, *s.project(&rows[i]))
	}
	return result, nil
}

// Get returns one listing. Unavailable listings are forbidden to everyone
// but their owner.
func (s *listingService) Get(ctx context.Context, id uuid.UUID, requester *models.Identity) (*models.ListingResponse, error) {
	listing, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !listing.IsAvailable && !requester.Owns(listing) {
		return nil, ErrForbidden
	}
	return s.project(listing), nil
}

// Create persists a new listing owned by the requester. Only landlord and
// caretaker roles may create.
func (s *listingService) Create(ctx context.Context, input ListingInput, images []*multipart.FileHeader, requester *models.Identity) (*models.ListingResponse, error) {
	if requester == nil {
		return nil, ErrUnauthenticated
	}
	if !requester.CanManageListings() {
		return nil, ErrForbidden
	}
	if err := validateListingInput(input); err != nil {
		return nil, err
	}

	keys, err := s.images.UploadImages(ctx, images)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	listing := &models.Listing{
		ID:           uuid.New(),
		LandlordID:   requester.ID,
		LandlordName: requester.Name,
		ImageKeys:    pq.StringArray(keys),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	applyListingInput(listing, input)

	if err := s.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, fmt.Errorf("failed to insert listing for landlord %s: %w", requester.ID, err)
	}
	return s.project(listing), nil
}

// Update replaces all mutable fields of an owned listing and reconciles its
// image set. The row is persisted with the new key sequence before any
// orphaned blob is removed, so a failed remove can only leave garbage,
// never a row pointing at a dead blob.
func (s *listingService) Update(ctx context.Context, id uuid.UUID, input ListingInput, keepImages []string, images []*multipart.FileHeader, requester *models.Identity) (*models.ListingResponse, error) {
	if requester == nil {
		return nil, ErrUnauthenticated
	}
	if err := validateListingInput(input); err != nil {
		return nil, err
	}

	listing, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.Owns(listing) {
		return nil, ErrForbidden
	}

	uploaded, err := s.images.UploadImages(ctx, images)
	if err != nil {
		return nil, err
	}

	newKeys, orphans := ReconcileImageKeys(listing.ImageKeys, keepImages, uploaded)

	applyListingInput(listing, input)
	listing.LandlordName = requester.Name
	listing.ImageKeys = pq.StringArray(newKeys)
	listing.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(listing).Error; err != nil {
		return nil, fmt.Errorf("failed to update listing %s: %w", id, err)
	}

	s.images.RemoveImages(ctx, orphans)
	return s.project(listing), nil
}

// Delete removes an owned listing and its stored blobs.
func (s *listingService) Delete(ctx context.Context, id uuid.UUID, requester *models.Identity) error {
	if requester == nil {
		return ErrUnauthenticated
	}

	listing, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if !requester.Owns(listing) {
		return ErrForbidden
	}

	s.images.RemoveImages(ctx, listing.ImageKeys)

	if err := s.db.WithContext(ctx).Delete(&models.Listing{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete listing %s: %w", id, err)
	}
	return nil
}

// ListByOwner returns every listing of the requester, available or not.
func (s *listingService) ListByOwner(ctx context.Context, requester *models.Identity) ([]models.ListingResponse, error) {
	if requester == nil {
		return nil, ErrUnauthenticated
	}

	var rows []models.Listing
	err := s.db.WithContext(ctx).
		Where("landlord_id = ?", requester.ID).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query listings for landlord %s: %w", requester.ID, err)
	}
	return s.projectAll(rows), nil
}

// ListByOwnerID is the public view of a landlord's catalogue: available
// listings only, regardless of who asks.
func (s *listingService) ListByOwnerID(ctx context.Context, ownerID string) ([]models.ListingResponse, error) {
	var rows []models.Listing
	err := s.db.WithContext(ctx).
		Where("landlord_id = ? AND is_available = ?", ownerID, true).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query listings for landlord %s: %w", ownerID, err)
	}
	return s.projectAll(rows), nil
}

func (s *listingService) findByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.WithContext(ctx).First(&listing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find listing %s: %w", id, err)
	}
	return &listing, nil
}

func (s *listingService) project(l *models.Listing) *models.ListingResponse {
	return models.NewListingResponse(l, s.images.PublicURL)
}

func (s *listingService) projectAll(rows []models.Listing) []models.ListingResponse {
	out := make([]models.ListingResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *s.project(&rows[i]))
	}
	return out
}

// applyListingInput writes every mutable field, including zero values.
func applyListingInput(l *models.Listing, input ListingInput) {
	l.Title = input.Title
	l.Description = input.Description
	l.Price = input.Price
	l.PropertyType = input.PropertyType
	l.Bedrooms = input.Bedrooms
	l.Bathrooms = input.Bathrooms
	l.Location = input.Location
	l.County = input.County
	l.Estate = input.Estate
	l.Amenities = pq.StringArray(input.Amenities)
	l.FurnishingStatus = input.FurnishingStatus
	l.Parking = input.Parking
	l.Garden = input.Garden
	l.Balcony = input.Balcony
	l.OwnCompound = input.OwnCompound
	l.Electricity = input.Electricity
	l.Internet = input.Internet
	l.IsAvailable = input.IsAvailable
}

func validateListingInput(input ListingInput) error {
	if input.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.Price < 0 {
		return fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
	}
	if input.Bedrooms < 0 || input.Bathrooms < 0 {
		return fmt.Errorf("%w: bedrooms and bathrooms must be non-negative", ErrInvalidInput)
	}
	return nil
}
