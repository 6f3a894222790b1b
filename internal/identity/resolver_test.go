package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muthii-lawrence/nyumba-hub.backend/internal/config"
	"github.com/muthii-lawrence/nyumba-hub.backend/internal/models"
)

func TestRemoteResolver_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		switch r.Header.Get("Authorization") {
		case "Bearer good-token":
			json.NewEncoder(w).Encode(models.Identity{
				ID:   "usr-1",
				Name: "Wanjiku Muthii",
				Role: models.RoleLandlord,
			})
		case "Bearer garbled-token":
			w.Write([]byte("not json"))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid token"}`))
		}
	}))
	defer srv.Close()

	resolver := NewResolver(&config.Config{
		IdentityProviderURL: srv.URL,
		IdentityTimeout:     2 * time.Second,
	})
	ctx := context.Background()

	ident, err := resolver.Resolve(ctx, "good-token")
	require.NoError(t, err)
	require.NotNil(t, ident)
	assert.Equal(t, "usr-1", ident.ID)
	assert.Equal(t, models.RoleLandlord, ident.Role)

	// Rejected, garbled and absent credentials all resolve to anonymous.
	ident, err = resolver.Resolve(ctx, "bad-token")
	assert.NoError(t, err)
	assert.Nil(t, ident)

	ident, err = resolver.Resolve(ctx, "garbled-token")
	assert.NoError(t, err)
	assert.Nil(t, ident)

	ident, err = resolver.Resolve(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, ident)
}

func TestRemoteResolver_ProviderUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Nothing listening anymore.

	resolver := NewResolver(&config.Config{
		IdentityProviderURL: srv.URL,
		IdentityTimeout:     time.Second,
	})

	ident, err := resolver.Resolve(context.Background(), "any-token")
	assert.NoError(t, err)
	assert.Nil(t, ident)
}

func signTestToken(t *testing.T, secret string, claims providerClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestLocalResolver_Resolve(t *testing.T) {
	const secret = "test-shared-secret"
	resolver := NewResolver(&config.Config{IdentityJwtSecret: secret})
	ctx := context.Background()

	bearer := signTestToken(t, secret, providerClaims{
		Name:  "Brian Otieno",
		Role:  models.RoleTenant,
		Email: "brian@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "usr-2",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	ident, err := resolver.Resolve(ctx, bearer)
	require.NoError(t, err)
	require.NotNil(t, ident)
	assert.Equal(t, "usr-2", ident.ID)
	assert.Equal(t, "Brian Otieno", ident.Name)
	assert.Equal(t, models.RoleTenant, ident.Role)
	assert.Equal(t, "brian@example.com", ident.Email)
}

func TestLocalResolver_InvalidTokensAreAnonymous(t *testing.T) {
	const secret = "test-shared-secret"
	resolver := NewResolver(&config.Config{IdentityJwtSecret: secret})
	ctx := context.Background()

	// Wrong secret.
	bearer := signTestToken(t, "other-secret", providerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "usr-2",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	ident, err := resolver.Resolve(ctx, bearer)
	assert.NoError(t, err)
	assert.Nil(t, ident)

	// Expired.
	bearer = signTestToken(t, secret, providerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "usr-2",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	ident, err = resolver.Resolve(ctx, bearer)
	assert.NoError(t, err)
	assert.Nil(t, ident)

	// Missing subject.
	bearer = signTestToken(t, secret, providerClaims{
		Name: "Nobody",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	ident, err = resolver.Resolve(ctx, bearer)
	assert.NoError(t, err)
	assert.Nil(t, ident)

	// Not a JWT at all.
	ident, err = resolver.Resolve(ctx, "nonsense")
	assert.NoError(t, err)
	assert.Nil(t, ident)
}

func TestNewResolver_ModeSelection(t *testing.T) {
	r := NewResolver(&config.Config{IdentityProviderURL: "https://id.example.com", IdentityTimeout: time.Second})
	_, ok := r.(*remoteResolver)
	assert.True(t, ok)

	r = NewResolver(&config.Config{IdentityJwtSecret: "secret"})
	_, ok = r.(*localResolver)
	assert.True(t, ok)
}
