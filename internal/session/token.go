package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "eyecare-portal"

var ErrInvalidBrowserToken = errors.New("invalid browser token")

// BrowserTokens issues and verifies the signed cookie value that identifies
// a browser. The token carries only a random browser id; the patient
// identifier never leaves the server.
type BrowserTokens struct {
	secret []byte
	now    func() time.Time
}

func NewBrowserTokens(secret string) (*BrowserTokens, error) {
	if len(secret) < 16 {
		return nil, errors.New("browser token secret must be at least 16 bytes")
	}
	return &BrowserTokens{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

// Issue creates a new browser id and its signed token.
func (t *BrowserTokens) Issue() (browserID, token string, err error) {
	browserID = uuid.New().String()
	claims := jwt.RegisteredClaims{
		ID:       browserID,
		Issuer:   tokenIssuer,
		IssuedAt: jwt.NewNumericDate(t.now()),
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign browser token: %w", err)
	}
	return browserID, token, nil
}

// Parse verifies token and returns the browser id it carries.
func (t *BrowserTokens) Parse(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBrowserToken, err)
	}

	if _, err := uuid.Parse(claims.ID); err != nil {
		return "", fmt.Errorf("%w: bad browser id", ErrInvalidBrowserToken)
	}
	return claims.ID, nil
}
