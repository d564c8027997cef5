package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pawfeed-backend/internal/models"
	"pawfeed-backend/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const jwtExpDays = 365

// UserService handles account and profile logic.
type UserService struct {
	records   store.RecordStore
	jwtSecret string
}

// NewUserService creates a new user service.
func NewUserService(records store.RecordStore, jwtSecret string) *UserService {
	return &UserService{
		records:   records,
		jwtSecret: jwtSecret,
	}
}

// CreateUserRequest represents a signup request.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// UpdateProfileRequest carries the mutable profile fields. Nil fields are
// left unchanged.
type UpdateProfileRequest struct {
	Nickname  *string   `json:"nickname,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
	Onboarded *bool     `json:"onboarded,omitempty"`
}

// CreateUser creates a new account and returns it with a signed token.
func (s *UserService) CreateUser(ctx context.Context, email, nickname string) (*models.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("a valid email is required")
	}
	if nickname == "" {
		return nil, "", fmt.Errorf("nickname is required")
	}

	existing, err := s.records.QueryByField(ctx, store.CollectionUsers, "email", email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}
	if len(existing) > 0 {
		return nil, "", fmt.Errorf("email is already registered")
	}

	user := models.User{
		ID:        uuid.New().String(),
		Email:     email,
		Nickname:  nickname,
		Pets:      []models.Ref{},
		Tags:      []string{},
		CreatedAt: time.Now(),
	}

	rec, err := store.Encode(user)
	if err != nil {
		return nil, "", err
	}
	if _, err := s.records.Insert(ctx, store.CollectionUsers, rec); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// GetUser retrieves a user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	rec, err := s.records.GetByID(ctx, store.CollectionUsers, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	var user models.User
	if err := store.Decode(rec, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

// UpdateProfile applies the given profile changes to the user's own record.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*models.User, error) {
	if userID == "" {
		return nil, store.ErrMissingID
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Nickname != nil {
		if *req.Nickname == "" {
			return nil, fmt.Errorf("nickname cannot be empty")
		}
		user.Nickname = *req.Nickname
	}
	if req.Tags != nil {
		user.Tags = *req.Tags
	}
	if req.Onboarded != nil {
		user.Onboarded = *req.Onboarded
	}

	rec, err := store.Encode(user)
	if err != nil {
		return nil, err
	}
	if err := s.records.Update(ctx, store.CollectionUsers, userID, rec); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// GenerateJWT generates a JWT token for a user.
func (s *UserService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID.
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}
