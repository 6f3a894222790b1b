package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Listing represents a property rental advertisement.
type Listing struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	LandlordID       string         `gorm:"index;not null" json:"landlord_id"` // immutable after creation
	LandlordName     string         `json:"landlord_name"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Price            int64          `json:"price"` // minor-unit-free, non-negative
	PropertyType     string         `json:"property_type"`
	Bedrooms         int            `json:"bedrooms"`
	Bathrooms        int            `json:"bathrooms"`
	Location         string         `json:"location"`
	County           string         `json:"county"`
	Estate           string         `json:"estate"`
	Amenities        pq.StringArray `gorm:"type:text[]" json:"amenities"`
	FurnishingStatus string         `json:"furnishing_status"`
	Parking          bool           `json:"parking"`
	Garden           bool           `json:"garden"`
	Balcony          bool           `json:"balcony"`
	OwnCompound      bool           `json:"own_compound"`
	Electricity      bool           `json:"electricity"`
	Internet         bool           `json:"internet"`
	IsAvailable      bool           `json:"is_available"`
	// Ordered object-store keys; the first key is the primary image.
	// Keys are stored as-is so orphan cleanup never has to parse URLs.
	ImageKeys pq.StringArray `gorm:"type:text[]" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Listing) TableName() string {
	return "listings"
}

// ImageRef is the public view of one stored image.
type ImageRef struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ListingResponse is the API projection of a Listing. Image keys are
// resolved to public URLs; everything else maps field-for-field.
type ListingResponse struct {
	Listing
	PrimaryImage *ImageRef  `json:"primary_image"`
	Images       []ImageRef `json:"images"`
}

// NewListingResponse builds the public projection of a listing. publicURL
// resolves an object key to its public URL.
func NewListingResponse(l *Listing, publicURL func(string) string) *ListingResponse {
	resp := &ListingResponse{Listing: *l, Images: []ImageRef{}}
	for i, key := range l.ImageKeys {
		ref := ImageRef{Key: key, URL: publicURL(key)}
		if i == 0 {
			resp.PrimaryImage = &ref
		} else {
			resp.Images = append(resp.Images, ref)
		}
	}
	return resp
}

// ListingPage is a paginated listing result. Total ignores pagination so
// clients can render paging controls.
type ListingPage struct {
	Listings []ListingResponse `json:"listings"`
	Total    int64             `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}
