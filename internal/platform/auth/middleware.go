package auth

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	// UserIDKey is the context key holding the authenticated principal.
	UserIDKey contextKey = "user_id"

	// devBypassUserID is the fixed development principal returned when
	// auth bypass is enabled and no token is present on the request.
	devBypassUserID = "dev_user_001"
)

// Claims are the registered JWT claims this gateway accepts, plus the
// handful of non-standard subject-claim spellings seen in the wild.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
	UID    string `json:"uid,omitempty"`
	UserId string `json:"userId,omitempty"`
}

// userID returns the first present claim among {sub, user_id, uid, userId}.
func (c *Claims) userID() string {
	if c.Subject != "" {
		return c.Subject
	}
	if c.UserID != "" {
		return c.UserID
	}
	if c.UID != "" {
		return c.UID
	}
	return c.UserId
}

// JWTConfig configures non-bypass token validation. Exactly one of
// PublicKey or SharedSecret must be set: PublicKey selects RS256,
// SharedSecret selects HS256.
type JWTConfig struct {
	Issuer       string
	Audience     string
	PublicKey    *rsa.PublicKey
	SharedSecret []byte
}

// ParseRSAPublicKeyPEM parses a PEM-encoded RSA public key, as supplied via
// the JWT_PUBLIC_KEY environment variable.
func ParseRSAPublicKeyPEM(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no PEM block found in public key")
	}

	if pub, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("public key is not RSA: %T", pub)
		}
		return rsaPub, nil
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err == nil {
		rsaPub, ok := cert.PublicKey.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("certificate public key is not RSA: %T", cert.PublicKey)
		}
		return rsaPub, nil
	}

	return nil, fmt.Errorf("parsing RSA public key: %w", err)
}

// JWTMiddleware enforces bearer-token authentication. A token MUST be
// present and MUST validate against the configured issuer, audience, and
// signing key (RS256 public key or HS256 shared secret), including expiry.
// On success, the resolved user id is placed on the request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			tokenStr := parts[1]
			claims := &Claims{}

			opts := []jwt.ParserOption{}
			if cfg.Issuer != "" {
				opts = append(opts, jwt.WithIssuer(cfg.Issuer))
			}
			if cfg.Audience != "" {
				opts = append(opts, jwt.WithAudience(cfg.Audience))
			}

			var token *jwt.Token
			var err error

			switch {
			case cfg.PublicKey != nil:
				opts = append(opts, jwt.WithValidMethods([]string{"RS256"}))
				token, err = jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
					return cfg.PublicKey, nil
				}, opts...)
			case len(cfg.SharedSecret) > 0:
				opts = append(opts, jwt.WithValidMethods([]string{"HS256"}))
				token, err = jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
					return cfg.SharedSecret, nil
				}, opts...)
			default:
				return echo.NewHTTPError(http.StatusInternalServerError, "authenticator misconfigured: no signing key")
			}

			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			userID := claims.userID()
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has no usable subject claim")
			}

			ctx := context.WithValue(c.Request().Context(), UserIDKey, userID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// DevAuthMiddleware implements enable_auth_bypass=true: if no token is
// present, a fixed development principal is used. If a token is present,
// it is NOT validated; the principal is derived from the token's prefix.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")

			var userID string
			if authHeader == "" {
				userID = devBypassUserID
			} else {
				parts := strings.SplitN(authHeader, " ", 2)
				raw := authHeader
				if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
					raw = parts[1]
				}
				userID = bypassPrincipalFromToken(raw)
			}

			ctx := context.WithValue(c.Request().Context(), UserIDKey, userID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// bypassPrincipalFromToken derives an unvalidated principal from the
// leading segment of a bearer token, so bypass-mode requests can still be
// distinguished by caller in logs and audit records.
func bypassPrincipalFromToken(raw string) string {
	const prefixLen = 12
	segment := raw
	if dot := strings.IndexByte(segment, '.'); dot > 0 {
		segment = segment[:dot]
	}
	if len(segment) > prefixLen {
		segment = segment[:prefixLen]
	}
	if segment == "" {
		return devBypassUserID
	}
	return "bypass_" + segment
}

// UserIDFromContext returns the authenticated principal set by JWTMiddleware
// or DevAuthMiddleware, or "" if none is present.
func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}
