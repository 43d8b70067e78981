package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/loquihq/loqui/internal/identity"
)

func testKeyPair(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return pub, priv
}

func testUser() identity.User {
	return identity.User{
		ID:          1,
		WorkspaceID: 42,
		Fullname:    "Hal",
		Email:       "hal@acme.test",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func signWithClaims(t *testing.T, key ed25519.PrivateKey, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestSignVerifyRoundTrip(t *testing.T) {
	pub, priv := testKeyPair(t)
	signer := NewSigner(priv)
	verifier := NewVerifier(pub)
	user := testUser()

	token, err := signer.Sign(user)
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}

	got, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if got != user {
		t.Errorf("Verify = %+v, want the signed identity %+v", got, user)
	}
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	_, priv := testKeyPair(t)
	otherPub, _ := testKeyPair(t)

	token, err := NewSigner(priv).Sign(testUser())
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewVerifier(otherPub).Verify(token)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Verify error = %v, want ErrInvalidSignature", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	pub, priv := testKeyPair(t)
	claims := Claims{
		User: testUser(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-8 * 24 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	_, err := NewVerifier(pub).Verify(signWithClaims(t, priv, claims))
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify error = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyRejectsClaimMismatches(t *testing.T) {
	pub, priv := testKeyPair(t)
	verifier := NewVerifier(pub)
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	cases := []struct {
		name   string
		claims Claims
		want   error
	}{
		{
			name: "issuer mismatch",
			claims: Claims{User: testUser(), RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone_else",
				Audience:  jwt.ClaimStrings{TokenAudience},
				ExpiresAt: future,
			}},
			want: ErrIssuerMismatch,
		},
		{
			name: "audience mismatch",
			claims: Claims{User: testUser(), RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    TokenIssuer,
				Audience:  jwt.ClaimStrings{"other_app"},
				ExpiresAt: future,
			}},
			want: ErrAudienceMismatch,
		},
		{
			name: "missing expiry",
			claims: Claims{User: testUser(), RegisteredClaims: jwt.RegisteredClaims{
				Issuer:   TokenIssuer,
				Audience: jwt.ClaimStrings{TokenAudience},
			}},
			want: ErrMalformedToken,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := verifier.Verify(signWithClaims(t, priv, tc.claims))
			if !errors.Is(err, tc.want) {
				t.Errorf("Verify error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	pub, _ := testKeyPair(t)
	_, err := NewVerifier(pub).Verify("not.a.token")
	if !errors.Is(err, ErrMalformedToken) {
		t.Errorf("Verify error = %v, want ErrMalformedToken", err)
	}
}

func TestTokenLifetimeIsSevenDays(t *testing.T) {
	pub, priv := testKeyPair(t)
	token, err := NewSigner(priv).Sign(testUser())
	if err != nil {
		t.Fatal(err)
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return pub, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()})); err != nil {
		t.Fatal(err)
	}
	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if lifetime != TokenLifetime {
		t.Errorf("token lifetime = %v, want %v", lifetime, TokenLifetime)
	}
}
