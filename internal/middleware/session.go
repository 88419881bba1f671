package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/joseph0711/grading-system-sub000/internal/utils"
)

// SessionCookieName is the cookie carrying the bearer session token.
const SessionCookieName = "session_token"

// SessionVerifier reports whether a session id is still live. Revoked or
// expired sessions fail the check even when the token signature is valid.
type SessionVerifier interface {
	SessionActive(ctx context.Context, sessionID string) (bool, error)
}

// SessionProtected returns a middleware that validates the session token from
// the cookie or an Authorization bearer header and stashes the caller's
// identity in request locals.
func SessionProtected(secret string, sessions SessionVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		sessionID, _ := claims["sid"].(string)
		if sessions != nil {
			active, err := sessions.SessionActive(c.Context(), sessionID)
			if err != nil {
				return utils.SendError(c, fiber.StatusInternalServerError, "session lookup failed")
			}
			if !active {
				return utils.SendError(c, fiber.StatusUnauthorized, "session expired")
			}
		}

		userID, err := subjectToUserID(claims["sub"])
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}

		c.Locals("user_id", userID)
		c.Locals("session_id", sessionID)
		if role, ok := claims["role"].(string); ok {
			c.Locals("user_role", strings.ToLower(strings.TrimSpace(role)))
		}

		return c.Next()
	}
}

func tokenFromRequest(c *fiber.Ctx) string {
	if cookie := strings.TrimSpace(c.Cookies(SessionCookieName)); cookie != "" {
		return cookie
	}

	authorization := c.Get("Authorization")
	const bearer = "Bearer "
	if len(authorization) > len(bearer) && strings.EqualFold(authorization[:len(bearer)], bearer) {
		return strings.TrimSpace(authorization[len(bearer):])
	}

	return ""
}

func subjectToUserID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}
