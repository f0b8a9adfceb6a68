package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
)

const DefaultTokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims point at a server-side session. The session, not the token, decides
// whether the caller is still logged in.
type Claims struct {
	SessionID string      `json:"sid"`
	Role      models.Role `json:"role"`
	jwt.StandardClaims
}

func GenerateToken(sessionID string, role models.Role, secret string) (string, error) {
	return GenerateTokenWithExpiry(sessionID, role, secret, DefaultTokenTTL)
}

func GenerateTokenWithExpiry(sessionID string, role models.Role, secret string, expiry time.Duration) (string, error) {
	if sessionID == "" {
		return "", errors.New("session ID cannot be empty")
	}
	if secret == "" {
		return "", errors.New("secret cannot be empty")
	}

	now := time.Now()
	claims := &Claims{
		SessionID: sessionID,
		Role:      role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(expiry).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.SessionID == "" || !claims.Role.Valid() {
			return nil, ErrInvalidToken
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}
