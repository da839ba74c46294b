package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const userIdClaim = "userId"

type signedToken struct {
	SignedString string
	ID           string
	ExpiresIn    time.Duration
}

// generateToken signs a token identifying a new session of the user.
func generateToken(userId uint, secretKey string, ttl time.Duration) (*signedToken, error) {
	currentTime := time.Now()
	tokenExpiration := currentTime.Add(ttl)

	token := jwt.New()

	err := token.Set(userIdClaim, userId)
	if err != nil {
		return nil, err
	}

	tokenId := uuid.NewString()
	err = token.Set(jwt.JwtIDKey, tokenId)
	if err != nil {
		return nil, err
	}

	err = token.Set(jwt.ExpirationKey, tokenExpiration.Unix())
	if err != nil {
		return nil, err
	}

	err = token.Set(jwt.IssuedAtKey, currentTime.Unix())
	if err != nil {
		return nil, err
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, []byte(secretKey)))
	if err != nil {
		return nil, err
	}

	return &signedToken{
		SignedString: string(signed),
		ID:           tokenId,
		ExpiresIn:    tokenExpiration.Sub(currentTime),
	}, nil
}

type tokenClaims struct {
	UserId    uint
	ID        string
	ExpiresAt time.Time
}

// validateToken verifies the signature and expiry of tokenString and returns its claims.
func validateToken(tokenString string, secretKey string) (*tokenClaims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256, []byte(secretKey)),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil, err
	}

	userId, ok := token.Get(userIdClaim)
	if !ok {
		return nil, fmt.Errorf("%s not found in claims", userIdClaim)
	}

	id, ok := userId.(float64)
	if !ok || id < 1 {
		return nil, errors.New("invalid user id in claims")
	}

	if token.JwtID() == "" {
		return nil, fmt.Errorf("%s not found in claims", jwt.JwtIDKey)
	}

	return &tokenClaims{
		UserId:    uint(id),
		ID:        token.JwtID(),
		ExpiresAt: token.Expiration(),
	}, nil
}
