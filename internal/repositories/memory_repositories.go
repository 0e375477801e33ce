package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"kulit/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]models.User)}
}

// Create adds a user, enforcing unique username and email.
func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("failed to create user: duplicate username or email")
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

// GetByUsername returns a user by username.
func (r *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username }, "username "+username)
}

// GetByEmail returns a user by email.
func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email }, "email "+email)
}

// GetByID returns a user by ID.
func (r *MockUserRepository) GetByID(id string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id }, "ID "+id)
}

func (r *MockUserRepository) find(match func(models.User) bool, desc string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with %s %w", desc, models.ErrNotFound)
}

// MockShippingRateRepository is an in-memory fee table.
type MockShippingRateRepository struct {
	rates map[string]models.ShippingRate
	mu    sync.RWMutex
}

// NewMockShippingRateRepository creates a new instance of MockShippingRateRepository.
func NewMockShippingRateRepository() *MockShippingRateRepository {
	return &MockShippingRateRepository{rates: make(map[string]models.ShippingRate)}
}

// GetAll returns the rates ordered by region.
func (r *MockShippingRateRepository) GetAll() ([]models.ShippingRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rates := make([]models.ShippingRate, 0, len(r.rates))
	for _, rate := range r.rates {
		rates = append(rates, rate)
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].Region < rates[j].Region })
	return rates, nil
}

// GetByRegion returns the rate for region.
func (r *MockShippingRateRepository) GetByRegion(region string) (*models.ShippingRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rate, ok := r.rates[region]
	if !ok {
		return nil, fmt.Errorf("shipping rate for %s %w", region, models.ErrNotFound)
	}
	return &rate, nil
}

// Upsert stores the rate.
func (r *MockShippingRateRepository) Upsert(rate *models.ShippingRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rate.UpdatedAt = time.Now()
	r.rates[rate.Region] = *rate
	return nil
}
