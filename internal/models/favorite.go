package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite is a user's bookmark of a listing. The (user, listing) pair is
// unique; the store enforces it.
type Favorite struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"not null;index;uniqueIndex:idx_user_listing" json:"user_id"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_listing" json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`

	Listing *Listing `gorm:"foreignKey:ListingID" json:"-"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// FavoriteResponse is the API projection of a favorite joined with its
// listing. Favorites whose listing is no longer available are excluded from
// list results before projection.
type FavoriteResponse struct {
	ID        uuid.UUID        `json:"id"`
	ListingID uuid.UUID        `json:"listing_id"`
	CreatedAt time.Time        `json:"created_at"`
	Listing   *ListingResponse `json:"listing"`
}
