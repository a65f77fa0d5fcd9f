package services

import (
	"fmt"
	"time"

	"chat-app/config"
	"chat-app/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// AuthClaims JWT 载荷
type AuthClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateAccessToken 生成访问令牌
func GenerateAccessToken(user *models.User) (string, error) {
	return generateToken(user, config.C.AccessTokenTTL)
}

// GenerateRefreshToken 生成刷新令牌
func GenerateRefreshToken(user *models.User) (string, error) {
	return generateToken(user, config.C.RefreshTokenTTL)
}

func generateToken(user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AuthClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.C.JWTSecret))
}

// ParseToken 校验令牌并返回载荷，失败统一归为 ErrUnauthorized
func ParseToken(tokenStr string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(config.C.JWTSecret), nil
	})
	if err != nil {
		return nil, errors.Wrap(ErrUnauthorized, err.Error())
	}
	if !token.Valid {
		return nil, errors.Wrap(ErrUnauthorized, "invalid token")
	}
	return claims, nil
}
