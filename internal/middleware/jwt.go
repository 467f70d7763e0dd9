package middleware

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"go-parish-admin/internal/model"
)

// JWTVerifier checks HS256 access tokens minted by the managed auth service. It never
// issues tokens.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &JWTVerifier{secret: []byte(secret)}, nil
}

func (v *JWTVerifier) ValidateToken(tokenString string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", model.ErrUnauthorized)
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid token claims", model.ErrUnauthorized)
	}

	claims := &model.AuthClaims{}
	claims.UserID, _ = claimsMap["sub"].(string)
	claims.Email, _ = claimsMap["email"].(string)
	claims.DisplayName = nestedString(claimsMap, "user_metadata", "full_name")
	if claims.DisplayName == "" {
		claims.DisplayName = nestedString(claimsMap, "user_metadata", "name")
	}
	claims.Role = nestedString(claimsMap, "app_metadata", "role")
	if claims.Role == "" {
		claims.Role, _ = claimsMap["role"].(string)
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: token has no subject", model.ErrUnauthorized)
	}

	return claims, nil
}

func nestedString(claims jwt.MapClaims, object string, key string) string {
	inner, ok := claims[object].(map[string]any)
	if !ok {
		return ""
	}
	value, _ := inner[key].(string)
	return strings.TrimSpace(value)
}
