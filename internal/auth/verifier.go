// Package auth verifies caller bearer tokens and yields a model.Identity.
package auth

import (
	"crypto/rsa"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/netguru/dotty-dns/internal/model"
	"github.com/netguru/dotty-dns/pkg/errors"
)

// DefaultLeeway is the clock skew tolerated on exp/nbf/iat.
const DefaultLeeway = 30 * time.Second

// Config holds the token verification settings.
type Config struct {
	// HMACSecret enables HS256 verification.
	HMACSecret string
	// PublicKeyFile is a PEM encoded RSA public key enabling RS256 verification.
	PublicKeyFile string
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

// Claims are the token claims Dotty reads.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates signed caller tokens.
type Verifier struct {
	hmacKey []byte
	rsaKey  *rsa.PublicKey
	parser  *jwt.Parser
}

// NewVerifier builds a Verifier from cfg. It returns ErrMissingAuthKey when
// neither a secret nor a public key is configured.
func NewVerifier(cfg Config) (*Verifier, error) {
	v := &Verifier{}
	methods := []string{}

	if cfg.HMACSecret != "" {
		v.hmacKey = []byte(cfg.HMACSecret)
		methods = append(methods, jwt.SigningMethodHS256.Alg())
	}
	if cfg.PublicKeyFile != "" {
		pem, err := os.ReadFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read public key: %w", err)
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM(pem)
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
		v.rsaKey = key
		methods = append(methods, jwt.SigningMethodRS256.Alg())
	}
	if len(methods) == 0 {
		return nil, errors.ErrMissingAuthKey
	}

	leeway := cfg.Leeway
	if leeway == 0 {
		leeway = DefaultLeeway
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithLeeway(leeway),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	v.parser = jwt.NewParser(opts...)
	return v, nil
}

func (v *Verifier) keyFunc(t *jwt.Token) (interface{}, error) {
	switch t.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if v.hmacKey != nil {
			return v.hmacKey, nil
		}
	case *jwt.SigningMethodRSA:
		if v.rsaKey != nil {
			return v.rsaKey, nil
		}
	}
	return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
}

// Verify parses and validates token. Any failure is an authentication error.
func (v *Verifier) Verify(token string) (model.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.Identity{}, errors.ErrUnauthenticated
	}

	claims := &Claims{}
	if _, err := v.parser.ParseWithClaims(token, claims, v.keyFunc); err != nil {
		return model.Identity{}, errors.Authentication("invalid token", err)
	}

	uid := claims.Subject
	if uid == "" {
		uid = claims.UserID
	}
	if uid == "" {
		return model.Identity{}, errors.Authentication("token has no subject", nil)
	}

	id := model.Identity{UID: uid, Email: claims.Email}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
