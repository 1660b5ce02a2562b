package handler

import (
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Principal is the authenticated caller, extracted from the JWT the
// echo-jwt middleware verified. Handlers receive the caller this way
// instead of trusting ids in request bodies.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// PrincipalFromContext reads the verified token claims from the request
// context. Returns false when the route is not behind the JWT middleware or
// the claims are malformed.
func PrincipalFromContext(c echo.Context) (Principal, bool) {
	token, ok := c.Get("user").(*jwtv5.Token)
	if !ok {
		return Principal{}, false
	}
	claims, ok := token.Claims.(jwtv5.MapClaims)
	if !ok {
		return Principal{}, false
	}

	rawID, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return Principal{}, false
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return Principal{UserID: userID, Email: email, Role: role}, true
}
