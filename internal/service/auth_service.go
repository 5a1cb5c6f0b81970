package service

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/ArtlessApps/ruckplan/internal/domain"
)

// FirebaseAuthClient defines the interface for Firebase Auth operations
// This allows mocking for tests
type FirebaseAuthClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthService handles authentication and user registration
type AuthService struct {
	userRepo     domain.UserRepository
	tokenService *TokenService
	authClient   FirebaseAuthClient
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	tokenService *TokenService,
	authClient FirebaseAuthClient,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokenService: tokenService,
		authClient:   authClient,
	}
}

// LoginRequest contains the request params
type LoginRequest struct {
	FirebaseToken string
	DeviceName    string
	Platform      string // "ios" or "watchos"
}

// LoginResponse contains the user, a token pair, and whether they were newly created
type LoginResponse struct {
	User      *domain.User
	Tokens    *TokenPair
	IsNewUser bool
}

// LoginOrRegister verifies a Firebase ID token and resolves it to a local
// user, creating one on first login.
func (s *AuthService) LoginOrRegister(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	// Step 1: Verify Firebase token and extract user info
	token, err := s.authClient.VerifyIDToken(ctx, req.FirebaseToken)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	firebaseUID := token.UID
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)

	// Default name if not provided
	if name == "" {
		name = email
	}

	// Step 2: Search for existing user by firebase_uid
	existingUser, err := s.userRepo.GetByFirebaseUID(ctx, firebaseUID)

	// Step 3: If not found by firebase_uid, try email (for pre-provisioned accounts)
	if err != nil && errors.Is(err, domain.ErrNotFound) {
		emailUser, emailErr := s.userRepo.GetByEmail(ctx, email)
		if emailErr == nil && emailUser != nil {
			if emailUser.FirebaseUID == "" {
				// Link the Firebase account to this user
				if updateErr := s.userRepo.UpdateFirebaseUID(ctx, emailUser.ID, firebaseUID); updateErr != nil {
					return nil, fmt.Errorf("failed to link firebase account: %w", updateErr)
				}
				emailUser.FirebaseUID = firebaseUID
				existingUser = emailUser
				err = nil
			} else {
				// Email exists but already linked to different firebase_uid
				return nil, fmt.Errorf("email already linked to different account")
			}
		}
	}

	// Step 4: Login existing user
	if err == nil && existingUser != nil {
		tokens, err := s.tokenService.GenerateTokenPair(ctx, existingUser, req.DeviceName, req.Platform)
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}

		return &LoginResponse{
			User:      existingUser,
			Tokens:    tokens,
			IsNewUser: false,
		}, nil
	}

	// Step 5: New user, created with the member role only. Admin is granted
	// out of band.
	if errors.Is(err, domain.ErrNotFound) {
		newUser := &domain.User{
			FirebaseUID: firebaseUID,
			Email:       email,
			Name:        name,
			Roles:       []string{domain.RoleMember},
		}

		if err := s.userRepo.Create(ctx, newUser); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		tokens, err := s.tokenService.GenerateTokenPair(ctx, newUser, req.DeviceName, req.Platform)
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}

		return &LoginResponse{
			User:      newUser,
			Tokens:    tokens,
			IsNewUser: true,
		}, nil
	}

	// Other error occurred
	return nil, fmt.Errorf("failed to fetch user: %w", err)
}
