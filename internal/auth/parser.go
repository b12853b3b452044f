package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avdonin/contracts-lite/internal/model"
)

type Claims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Parser validates HMAC-signed access tokens and extracts the principal.
type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

func (p *Parser) Parse(raw string) (model.Principal, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return model.Principal{}, err
	}
	if !token.Valid {
		return model.Principal{}, fmt.Errorf("invalid token")
	}
	if claims.UserID <= 0 {
		return model.Principal{}, fmt.Errorf("token has no subject")
	}
	return model.Principal{
		UserID: claims.UserID,
		Role:   model.Role(claims.Role),
	}, nil
}
