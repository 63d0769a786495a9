// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	"macrolens/internal/domain"
)

// DefaultRole is assigned when a token carries no role claim.
const DefaultRole = "authenticated"

// Authentication failures. Each carries a distinct machine-readable code.
var (
	ErrMissingToken     = domain.Unauthorized("missing_token", "Authorization header must be 'Bearer <token>'")
	ErrInvalidToken     = domain.Unauthorized("invalid_token", "Token is malformed or unsupported")
	ErrInvalidSignature = domain.Unauthorized("invalid_signature", "Token signature is invalid")
	ErrTokenExpired     = domain.Unauthorized("token_expired", "Token has expired")
	ErrInvalidAudience  = domain.Unauthorized("invalid_audience", "Token audience is not accepted")
	ErrMissingSubject   = domain.Unauthorized("missing_subject", "Token has no subject")
)

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService verifies bearer tokens issued by the identity provider.
type AuthService struct {
	secret   []byte
	audience string
	parser   *jwt.Parser
	jwks     *oidc.IDTokenVerifier
}

// NewAuthService verifies HS256 tokens signed with secret and requires aud to
// contain audience.
func NewAuthService(secret, audience string) *AuthService {
	if audience == "" {
		audience = DefaultRole
	}
	return &AuthService{
		secret:   []byte(secret),
		audience: audience,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithAudience(audience),
			jwt.WithExpirationRequired(),
		),
	}
}

// WithJWKS additionally accepts asymmetrically signed tokens verified
// against the provider's published key set. issuer may be empty.
func (s *AuthService) WithJWKS(ctx context.Context, jwksURL, issuer string) *AuthService {
	keySet := oidc.NewRemoteKeySet(ctx, jwksURL)
	s.jwks = oidc.NewVerifier(issuer, keySet, &oidc.Config{
		SkipClientIDCheck:    true,
		SkipIssuerCheck:      issuer == "",
		SupportedSigningAlgs: []string{oidc.RS256, oidc.ES256},
	})
	return s
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// Authenticate verifies the Authorization header and returns the caller.
func (s *AuthService) Authenticate(ctx context.Context, header string) (domain.Identity, error) {
	raw, err := BearerToken(header)
	if err != nil {
		return domain.Identity{}, err
	}
	return s.Verify(ctx, raw)
}

// Verify checks signature, audience and expiry of a raw token.
func (s *AuthService) Verify(ctx context.Context, raw string) (domain.Identity, error) {
	unverified, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return domain.Identity{}, ErrInvalidToken
	}
	if alg := unverified.Method.Alg(); !strings.HasPrefix(alg, "HS") && s.jwks != nil {
		return s.verifyJWKS(ctx, raw)
	}
	if len(s.secret) == 0 {
		return domain.Identity{}, ErrInvalidToken
	}

	var claims tokenClaims
	_, err = s.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.Identity{}, ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.Identity{}, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return domain.Identity{}, ErrInvalidAudience
	default:
		return domain.Identity{}, ErrInvalidToken
	}
	return identity(claims.Subject, claims.Email, claims.Role)
}

func (s *AuthService) verifyJWKS(ctx context.Context, raw string) (domain.Identity, error) {
	tok, err := s.jwks.Verify(ctx, raw)
	if err != nil {
		var expired *oidc.TokenExpiredError
		if errors.As(err, &expired) {
			return domain.Identity{}, ErrTokenExpired
		}
		return domain.Identity{}, ErrInvalidSignature
	}
	if !slices.Contains(tok.Audience, s.audience) {
		return domain.Identity{}, ErrInvalidAudience
	}
	var extra struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := tok.Claims(&extra); err != nil {
		return domain.Identity{}, ErrInvalidToken
	}
	return identity(tok.Subject, extra.Email, extra.Role)
}

func identity(sub, email, role string) (domain.Identity, error) {
	if sub == "" {
		return domain.Identity{}, ErrMissingSubject
	}
	if role == "" {
		role = DefaultRole
	}
	return domain.Identity{UserID: sub, Email: email, Role: role}, nil
}
