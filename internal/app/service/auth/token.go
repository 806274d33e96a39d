package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/petalmall/membership/pkg/config"
	"github.com/petalmall/membership/pkg/types"
)

// TokenIssuer signs and verifies the auth token carried by the
// auth_token cookie: HS256 with {sub: userId, role} claims.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(cfg *config.Config) (*TokenIssuer, error) {
	if cfg.Auth.Secret == "" {
		return nil, errors.New("auth secret is not configured")
	}
	return &TokenIssuer{secret: []byte(cfg.Auth.Secret), ttl: cfg.Auth.TokenTTL}, nil
}

func (t *TokenIssuer) Sign(id types.Identity, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(id.UserID, 10),
		"role": string(id.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(t.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenIssuer) Verify(raw string) (types.Identity, error) {
	token, err := jwt.Parse(raw, func(tk *jwt.Token) (interface{}, error) {
		if tk.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", tk.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return types.Identity{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return types.Identity{}, errors.New("invalid claims")
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return types.Identity{}, errors.New("invalid subject")
	}

	role, _ := claims["role"].(string)
	if role != string(types.RoleUser) && role != string(types.RoleAdmin) {
		return types.Identity{}, errors.New("invalid role")
	}

	return types.Identity{UserID: userID, Role: types.Role(role)}, nil
}
