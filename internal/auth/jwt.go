package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"carslink-backend/config"
)

// Claims is the session token payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs an HS256 JWT for the given account.
func GenerateAccessToken(cfg config.AuthConfig, accountID, role string) (token string, expiresAt time.Time, err error) {
	if accountID == "" {
		return "", time.Time{}, fmt.Errorf("account id is empty")
	}
	if cfg.JWTSecret == "" {
		return "", time.Time{}, fmt.Errorf("jwt_secret is empty")
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	now := time.Now()
	expiresAt = now.Add(ttl)

	c := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := t.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseAccessToken validates an HS256 JWT and returns its claims.
func ParseAccessToken(cfg config.AuthConfig, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, NewError(KindInvalidCredentials, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, NewError(KindInvalidCredentials, fmt.Errorf("invalid token"))
	}
	return claims, nil
}
