package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/muthii-lawrence/nyumba-hub.backend/internal/models"
)

// IFavoritesService defines the interface for favorite-related operations.
type IFavoritesService interface {
	List(ctx context.Context, requester *models.Identity) ([]models.FavoriteResponse, error)
	Add(ctx context.Context, requester *models.Identity, listingID uuid.UUID) (*models.Favorite, error)
	Remove(ctx context.Context, requester *models.Identity, listingID uuid.UUID) error
	Check(ctx context.Context, requester *models.Identity, listingID uuid.UUID) (bool, error)
}

// favoritesService implements IFavoritesService.
type favoritesService struct {
	db     *gorm.DB
	images IImageService
}

// NewFavoritesService creates a new FavoritesService.
func NewFavoritesService(db *gorm.DB, images IImageService) IFavoritesService {
	return &favoritesService{db: db, images: images}
}

// List returns the requester's favorites joined with their listings.
// Favorites whose listing has become unavailable are excluded from the
// result but kept in the store.
func (s *favoritesService) List(ctx context.Context, requester *models.Identity) ([]models.FavoriteResponse, error) {
	if requester == nil {
		return nil, ErrUnauthenticated
	}

	var favs []models.Favorite
	err := s.db.WithContext(ctx).
		Preload("Listing").
		Where("user_id = ?", requester.ID).
		Order("created_at DESC").
		Find(&favs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites for user %s: %w", requester.ID, err)
	}

	out := make([]models.FavoriteResponse, 0, len(favs))
	for i := range favs {
		listing := favs[i].Listing
		if listing == nil || !listing.IsAvailable {
			continue
		}
		out = append(out, models.FavoriteResponse{
			ID:        favs[i].ID,
			ListingID: favs[i].ListingID,
			CreatedAt: favs[i].CreatedAt,
			Listing:   models.NewListingResponse(listing, s.images.PublicURL),
		})
	}
	return out, nil
}

// Add bookmarks an available listing. The store's unique constraint on
// (user, listing) turns a duplicate insert into ErrConflict.
func (s *favoritesService) Add(ctx context.Context, requester *models.Identity, listingID uuid.UUID) (*models.Favorite, error) {
	if requester == nil {
		return nil, ErrUnauthenticated
	}

	var listing models.Listing
	err := s.db.WithContext(ctx).First(&listing, "id = ?", listingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find listing %s: %w", listingID, err)
	}
	if !listing.IsAvailable {
		return nil, fmt.Errorf("%w: listing is not available", ErrInvalidState)
	}

	fav := &models.Favorite{
		ID:        uuid.New(),
		UserID:    requester.ID,
		ListingID: listingID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(fav).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: listing already favorited", ErrConflict)
		}
		return nil, fmt.Errorf("failed to insert favorite for user %s: %w", requester.ID, err)
	}
	return fav, nil
}

// Remove deletes a favorite. Removing a favorite that does not exist is not
// an error.
func (s *favoritesService) Remove(ctx context.Context, requester *models.Identity, listingID uuid.UUID) error {
	if requester == nil {
		return ErrUnauthenticated
	}

	err := s.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", requester.ID, listingID).
		Delete(&models.Favorite{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete favorite for user %s: %w", requester.ID, err)
	}
	return nil
}

// Check reports whether the requester has favorited the listing. Absence is
// not an error.
func (s *favoritesService) Check(ctx context.Context, requester *models.Identity, listingID uuid.UUID) (bool, error) {
	if requester == nil {
		return false, ErrUnauthenticated
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND listing_id = ?", requester.ID, listingID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check favorite for user %s: %w", requester.ID, err)
	}
	return count > 0, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
