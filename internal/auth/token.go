// Package auth provides credential hashing, the token codec, and the request
// identity gate.
package auth

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/loquihq/loqui/internal/identity"
)

// Fixed token parameters. Issuer and audience are stamped on every token and
// required on verification; lifetime is seven days from issuance.
const (
	TokenIssuer   = "loqui_server"
	TokenAudience = "loqui_web"
	TokenLifetime = 7 * 24 * time.Hour
)

// Token verification errors. Handlers collapse all of these into a single
// unauthorized response so callers cannot probe which check failed.
var (
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrIssuerMismatch   = errors.New("token issuer mismatch")
	ErrAudienceMismatch = errors.New("token audience mismatch")
	ErrMalformedToken   = errors.New("token malformed")
)

// Claims embeds the identity snapshot as the token subject claims.
type Claims struct {
	User identity.User `json:"user"`
	jwt.RegisteredClaims
}

// Signer issues tokens with the server's Ed25519 private key.
type Signer struct {
	key ed25519.PrivateKey
}

// NewSigner creates a signer from an Ed25519 private key.
func NewSigner(key ed25519.PrivateKey) *Signer {
	return &Signer{key: key}
}

// Sign embeds user in a token valid for TokenLifetime from now.
func (s *Signer) Sign(user identity.User) (string, error) {
	now := time.Now()
	claims := Claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(s.key)
}

// Verifier checks tokens with the distributable Ed25519 public key.
type Verifier struct {
	key ed25519.PublicKey
}

// NewVerifier creates a verifier from an Ed25519 public key.
func NewVerifier(key ed25519.PublicKey) *Verifier {
	return &Verifier{key: key}
}

// Verify parses and validates token and returns the embedded identity
// verbatim. The identity is not re-read from storage: a token stays valid for
// its full lifetime even if the underlying account changes.
func (v *Verifier) Verify(token string) (identity.User, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return identity.User{}, classifyTokenError(err)
	}
	return claims.User, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuerMismatch
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrAudienceMismatch
	default:
		return ErrMalformedToken
	}
}
