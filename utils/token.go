package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/learnhub/chat_backend/models"
)

// GenerateToken creates a signed JWT for a user acting in a role
func GenerateToken(secret string, userID int, role string) (string, error) {
	if !models.ValidRole(role) {
		return "", fmt.Errorf("unknown role %q", role)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":     userID,
		"tipoUsuario": role,
		"exp":         time.Now().Add(time.Hour * 24 * 7).Unix(), // Token expires in 7 days
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates a signed token and returns the user id and role it
// carries.
func ParseToken(secret, tokenString string) (int, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, "", fmt.Errorf("invalid token")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", fmt.Errorf("token missing user_id claim")
	}

	role, ok := claims["tipoUsuario"].(string)
	if !ok || !models.ValidRole(role) {
		return 0, "", fmt.Errorf("token missing tipoUsuario claim")
	}

	return int(userID), role, nil
}
