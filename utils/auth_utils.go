package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserClaims is what the auth middlewares store in the gin context.
// UserID is the identity provider's uid for users and the username for admins.
type UserClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type contextKey string

const UserContextKey contextKey = "user"

var ErrInvalidToken = errors.New("invalid token")

func GetUser(c *gin.Context) *UserClaims {
	user, exists := c.Get(string(UserContextKey))
	if !exists {
		return nil
	}
	if userClaims, ok := user.(*UserClaims); ok {
		return userClaims
	}
	return nil
}

// GenerateToken signs an HS256 token for subject with the given role.
func GenerateToken(secret, subject, role string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": subject,
		"role":    role,
		"iat":     time.Now().Unix(),
		"exp":     expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken validates signature and expiry and extracts the claims.
func ParseToken(secret, raw string) (*UserClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	subject, _ := claims["user_id"].(string)
	if subject == "" {
		subject, _ = claims["sub"].(string)
	}
	if subject == "" {
		return nil, ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = RoleUser
	}
	return &UserClaims{UserID: subject, Role: role}, nil
}
