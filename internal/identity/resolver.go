package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/muthii-lawrence/nyumba-hub.backend/internal/config"
	"github.com/muthii-lawrence/nyumba-hub.backend/internal/models"
)

// IResolver turns an optional bearer credential into a caller identity.
// A missing, malformed, expired or unverifiable credential resolves to
// (nil, nil), meaning anonymous, never an error. Callers that require
// authentication convert nil into an authorization failure themselves.
type IResolver interface {
	Resolve(ctx context.Context, bearer string) (*models.Identity, error)
}

// NewResolver picks the verification mode from config: a remote verify call
// against the identity provider when IDENTITY_PROVIDER_URL is set, local
// verification with the provider's shared JWT secret otherwise.
func NewResolver(cfg *config.Config) IResolver {
	if cfg.IdentityProviderURL != "" {
		return &remoteResolver{
			cfg:        cfg,
			httpClient: &http.Client{Timeout: cfg.IdentityTimeout},
		}
	}
	return &localResolver{cfg: cfg}
}

// remoteResolver verifies credentials by calling the identity provider's
// user endpoint with the bearer token.
type remoteResolver struct {
	cfg        *config.Config
	httpClient *http.Client
}

func (r *remoteResolver) Resolve(ctx context.Context, bearer string) (*models.Identity, error) {
	if bearer == "" {
		return nil, nil
	}

	url := strings.TrimRight(r.cfg.IdentityProviderURL, "/") + "/user"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("identity: error creating verify request: %v", err)
		return nil, nil
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		// Network failure is treated as anonymous, not escalated.
		log.Printf("identity: error calling identity provider: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("identity: error reading provider response: %v", err)
		return nil, nil
	}

	var ident models.Identity
	if err := json.Unmarshal(body, &ident); err != nil {
		log.Printf("identity: error unmarshalling provider response: %v", err)
		return nil, nil
	}
	if ident.ID == "" {
		return nil, nil
	}
	return &ident, nil
}

// providerClaims is the claim set the identity provider signs into its
// access tokens.
type providerClaims struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	jwt.RegisteredClaims
}

// localResolver verifies the provider's HS256 access tokens with the shared
// secret, without a round trip to the provider.
type localResolver struct {
	cfg *config.Config
}

func (r *localResolver) Resolve(ctx context.Context, bearer string) (*models.Identity, error) {
	if bearer == "" {
		return nil, nil
	}

	claims := &providerClaims{}
	token, err := jwt.ParseWithClaims(bearer, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(r.cfg.IdentityJwtSecret), nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		// Invalid and expired tokens map to anonymous.
		return nil, nil
	}

	return &models.Identity{
		ID:    claims.Subject,
		Name:  claims.Name,
		Role:  claims.Role,
		Email: claims.Email,
		Phone: claims.Phone,
	}, nil
}
