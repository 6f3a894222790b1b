package handlers_test

import (
	"context"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/muthii-lawrence/nyumba-hub.backend/internal/api/middleware"
	"github.com/muthii-lawrence/nyumba-hub.backend/internal/models"
	"github.com/muthii-lawrence/nyumba-hub.backend/internal/services"
)

// --- Mocks ---

// MockListingService implements services.IListingService
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) List(ctx context.Context, filters map[string]interface{}, page services.PageOptions, requester *models.Identity) (*models.ListingPage, error) {
	args := m.Called(ctx, filters, page, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingPage), args.Error(1)
}

func (m *MockListingService) Search(ctx context.Context, query string, filters map[string]interface{}, page services.PageOptions, requester *models.Identity) (*models.ListingPage, error) {
	args := m.Called(ctx, query, filters, page, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingPage), args.Error(1)
}

func (m *MockListingService) Get(ctx context.Context, id uuid.UUID, requester *models.Identity) (*models.ListingResponse, error) {
	args := m.Called(ctx, id, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingResponse), args.Error(1)
}

func (m *MockListingService) Create(ctx context.Context, input services.ListingInput, images []*multipart.FileHeader, requester *models.Identity) (*models.ListingResponse, error) {
	args := m.Called(ctx, input, images, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingResponse), args.Error(1)
}

func (m *MockListingService) Update(ctx context.Context, id uuid.UUID, input services.ListingInput, keepImages []string, images []*multipart.FileHeader, requester *models.Identity) (*models.ListingResponse, error) {
	args := m.Called(ctx, id, input, keepImages, images, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingResponse), args.Error(1)
}

func (m *MockListingService) Delete(ctx context.Context, id uuid.UUID, requester *models.Identity) error {
	args := m.Called(ctx, id, requester)
	return args.Error(0)
}

func (m *MockListingService) ListByOwner(ctx context.Context, requester *models.Identity) ([]models.ListingResponse, error) {
	args := m.Called(ctx, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ListingResponse), args.Error(1)
}

func (m *MockListingService) ListByOwnerID(ctx context.Context, ownerID string) ([]models.ListingResponse, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ListingResponse), args.Error(1)
}

// MockFavoritesService implements services.IFavoritesService
type MockFavoritesService struct {
	mock.Mock
}

func (m *MockFavoritesService) List(ctx context.Context, requester *models.Identity) ([]models.FavoriteResponse, error) {
	args := m.Called(ctx, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FavoriteResponse), args.Error(1)
}

func (m *MockFavoritesService) Add(ctx context.Context, requester *models.Identity, listingID uuid.UUID) (*models.Favorite, error) {
	args := m.Called(ctx, requester, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Favorite), args.Error(1)
}

func (m *MockFavoritesService) Remove(ctx context.Context, requester *models.Identity, listingID uuid.UUID) error {
	args := m.Called(ctx, requester, listingID)
	return args.Error(0)
}

func (m *MockFavoritesService) Check(ctx context.Context, requester *models.Identity, listingID uuid.UUID) (bool, error) {
	args := m.Called(ctx, requester, listingID)
	return args.Bool(0), args.Error(1)
}

// withIdentity injects a resolved identity the way IdentityMiddleware would.
func withIdentity(ident *models.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ident != nil {
			c.Set(middleware.ContextKeyIdentity, ident)
		}
		c.Next()
	}
}
