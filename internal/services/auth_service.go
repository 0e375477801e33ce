package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"kulit/internal/models"
	"kulit/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the authenticated identity carried by a validated token.
type Claims struct {
	UserID   string
	Username string
	Role     models.Role
}

// IsAdmin reports whether the identity may use back-office operations.
func (c Claims) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// AuthService handles registration, login and token validation.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
	}
}

// RegisterUser registers a new customer account. The role requested by the
// caller is ignored.
func (s *AuthService) RegisterUser(user *models.User) error {
	user.Role = models.RoleCustomer
	return s.createUser(user)
}

// EnsureAdmin creates the admin account if the username is still free.
func (s *AuthService) EnsureAdmin(username, email, password string) error {
	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}
	admin := &models.User{Username: username, Email: email, Password: password, Role: models.RoleAdmin}
	if err := s.createUser(admin); err != nil {
		return err
	}
	log.Printf("[Auth] Seeded admin account %s", username)
	return nil
}

func (s *AuthService) createUser(user *models.User) error {
	if existingUser, err := s.userRepo.GetByUsername(user.Username); err == nil && existingUser != nil {
		return fmt.Errorf("username '%s' already taken", user.Username)
	}
	if existingUser, err := s.userRepo.GetByEmail(user.Email); err == nil && existingUser != nil {
		return fmt.Errorf("email '%s' already registered", user.Email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// LoginUser authenticates a user and returns a signed JWT.
func (s *AuthService) LoginUser(username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		// Do not reveal whether the username exists.
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	role := user.Role
	if role == "" {
		role = models.RoleCustomer
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(role),
		"exp":      time.Now().Add(s.tokenDurat).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT, returning the identity it carries.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	userID, _ := mapClaims["user_id"].(string)
	if userID == "" {
		return nil, fmt.Errorf("invalid token: missing user_id")
	}
	username, _ := mapClaims["username"].(string)
	role, _ := mapClaims["role"].(string)
	if role == "" {
		role = string(models.RoleCustomer)
	}
	return &Claims{UserID: userID, Username: username, Role: models.Role(role)}, nil
}
