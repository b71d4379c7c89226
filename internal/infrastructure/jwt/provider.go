package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bowling-bff/internal/config"
	"github.com/bowling-bff/internal/domain"
	"github.com/bowling-bff/internal/pkg/id"
	"github.com/golang-jwt/jwt/v5"
)

const ticketIssuer = "bowling-bff"

// Claims holds the verification ticket payload.
type Claims struct {
	Email   string         `json:"email"`
	Purpose domain.Purpose `json:"purpose"`
	jwt.RegisteredClaims
}

// Provider signs and verifies RS256 verification tickets.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	expiry     time.Duration
	now        func() time.Time
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	expiry := cfg.JWTExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &Provider{privateKey: privKey, publicKey: pubKey, expiry: expiry, now: time.Now}, nil
}

// Sign issues a ticket proving email was verified for purpose.
func (p *Provider) Sign(email string, purpose domain.Purpose) (*domain.Ticket, error) {
	now := p.now()
	exp := now.Add(p.expiry)
	claims := Claims{
		Email:   email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.New(),
			Issuer:    ticketIssuer,
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(p.privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign ticket: %w", err)
	}
	return &domain.Ticket{Token: signed, Email: email, Purpose: purpose, ExpiresAt: exp}, nil
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	}, jwt.WithIssuer(ticketIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Email == "" || !claims.Purpose.Valid() {
		return nil, errors.New("invalid ticket payload")
	}
	return claims, nil
}
