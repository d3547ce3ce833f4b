package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrorResponse aborts the request with an {"error": message} body.
func ErrorResponse(c *gin.Context, message string, code int) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// SessionTTL is the lifetime of an access token issued at login.
const SessionTTL = 30 * time.Minute

// SessionClaims is the token payload: the user id and its expiry.
type SessionClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	clock  Clock
}

func NewTokenIssuer(secret string, clock Clock) *TokenIssuer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TokenIssuer{secret: []byte(secret), clock: clock}
}

// Issue returns a signed token for userID expiring SessionTTL from now.
func (t *TokenIssuer) Issue(userID string) (string, time.Time, error) {
	now := t.clock.Now()
	expiresAt := now.Add(SessionTTL)
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses tokenStr and returns its claims when signature and expiry hold.
func (t *TokenIssuer) Verify(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.clock.Now))
	if err != nil {
		return nil, fmt.Errorf("token parsing error: %w", err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func ValidatePassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}
