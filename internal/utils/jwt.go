package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ParseViewerIDFromToken validates the JWT and extracts the viewer_id claim.
func ParseViewerIDFromToken(tokenString, secret string) (string, error) {
	if tokenString == "" {
		return "", errors.New("missing token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	viewerID, ok := claims["viewer_id"].(string)
	if !ok || viewerID == "" {
		return "", errors.New("invalid viewer ID in token")
	}
	return viewerID, nil
}
