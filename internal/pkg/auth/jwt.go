package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrInvalidFormat = errors.New("invalid token format")
)

const bearerScheme = "bearer "

// JWTConfig holds the signing key, token lifetime and issuer
type JWTConfig struct {
	SecretKey      string
	AccessTokenExp time.Duration
	TokenIssuer    string
}

// TokenIssuer issues and verifies access tokens
type TokenIssuer interface {
	Issue(userID int64, role string) (token string, expiresIn int64, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims carry the caller identity; the role is re-checked against the store on every policy decision
type Claims struct {
	UserID int64  `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService signs HS256 access tokens
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

var _ TokenIssuer = (*JWTService)(nil)

func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config, now: time.Now}
}

// Issue signs a token for the user and returns it with its lifetime in seconds
func (s *JWTService) Issue(userID int64, role string) (string, int64, error) {
	now := s.now()
	registered := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    s.config.TokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenExp)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: userID, Role: role, RegisteredClaims: registered}).
		SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", 0, fmt.Errorf("sign access token: %w", err)
	}
	return signed, int64(s.config.AccessTokenExp / time.Second), nil
}

func (s *JWTService) parser() *jwt.Parser {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.TokenIssuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.TokenIssuer))
	}
	return jwt.NewParser(opts...)
}

// ValidateToken verifies signature, lifetime and issuer. Expiry is reported as ErrExpiredToken.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	_, err := s.parser().ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.config.SecretKey), nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case claims.UserID <= 0 || claims.Role == "":
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractBearerToken accepts "Bearer <jwt>" in any case, optionally quoted, or a bare JWT
func ExtractBearerToken(header string) (string, error) {
	header = strings.Trim(strings.TrimSpace(header), `"'`)
	if len(header) > len(bearerScheme) && strings.EqualFold(header[:len(bearerScheme)], bearerScheme) {
		return strings.TrimSpace(header[len(bearerScheme):]), nil
	}
	if header != "" && strings.Count(header, ".") == 2 {
		return header, nil
	}
	return "", ErrInvalidFormat
}
