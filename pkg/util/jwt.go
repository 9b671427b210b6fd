package util

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the authenticated caller every protected operation runs as.
// Scope lists the project IDs the caller may touch; "*" means all.
type Principal struct {
	Subject string
	Name    string
	Role    string
	Scope   []string
}

// CanAccessProject reports whether the principal's scope covers projectID.
func (p Principal) CanAccessProject(projectID string) bool {
	for _, s := range p.Scope {
		if s == "*" || s == projectID {
			return true
		}
	}
	return false
}

// GenerateJWT creates a token carrying the principal's identity and scope.
func GenerateJWT(p Principal, secret string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	claims := jwt.MapClaims{
		"sub":   p.Subject,
		"name":  p.Name,
		"role":  p.Role,
		"scope": strings.Join(p.Scope, " "),
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseJWT validates a token and reconstructs the principal.
func ParseJWT(tokenStr, secret string) (Principal, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return Principal{}, err
	}

	if !token.Valid {
		return Principal{}, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, jwt.ErrTokenMalformed
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return Principal{}, jwt.ErrTokenMalformed
	}
	role, ok := claims["role"].(string)
	if !ok {
		return Principal{}, jwt.ErrTokenMalformed
	}

	p := Principal{Subject: sub, Role: role}
	if name, ok := claims["name"].(string); ok {
		p.Name = name
	}
	if scope, ok := claims["scope"].(string); ok && scope != "" {
		p.Scope = strings.Fields(scope)
	}
	return p, nil
}

func ExtractToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	parts := strings.Split(auth, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}
