package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig holds configuration for JWT token generation
type JWTConfig struct {
	Secret    string
	ExpiresIn int // hours
}

// AuthService handles staff authentication
type AuthService struct {
	stores    *Stores
	jwtConfig JWTConfig
}

// NewAuthService creates a new authentication service
func NewAuthService(stores *Stores, jwtConfig JWTConfig) *AuthService {
	return &AuthService{
		stores:    stores,
		jwtConfig: jwtConfig,
	}
}

// Claims represents JWT claims
type Claims struct {
	StaffID    string `json:"staff_id"`
	Role       string `json:"role"`
	Department string `json:"department"`
	jwt.RegisteredClaims
}

// Login authenticates a staff member and returns a JWT token
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.Staff, error) {
	staff, err := s.stores.Staff.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}

	err = bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password))
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}

	token, err := s.generateToken(staff)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, staff, nil
}

// generateToken generates a JWT token for a staff member
func (s *AuthService) generateToken(staff *models.Staff) (string, error) {
	expirationTime := time.Now().Add(time.Duration(s.jwtConfig.ExpiresIn) * time.Hour)

	claims := &Claims{
		StaffID:    staff.ID.String(),
		Role:       string(staff.Role),
		Department: string(staff.Department),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// GetStaffFromToken gets the staff member associated with a token
func (s *AuthService) GetStaffFromToken(ctx context.Context, tokenString string) (*models.Staff, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	staffID, err := uuid.Parse(claims.StaffID)
	if err != nil {
		return nil, fmt.Errorf("invalid staff ID in token: %w", err)
	}

	staff, err := s.stores.Staff.GetByID(ctx, staffID)
	if err != nil {
		return nil, notFoundOr(err, "staff")
	}

	return staff, nil
}
