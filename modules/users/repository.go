package users

import (
	"errors"
	"fmt"

	domain "github.com/example/user-crud-demo/domain/user"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound is returned when no user matches the query.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned when a write violates the username
	// or email uniqueness constraint at commit time.
	ErrDuplicateUser = errors.New("username or email already exists")
)

// UserRepository handles user persistence using GORM. Each call runs
// in its own implicit transaction; conflicting writes are serialized
// by the database's uniqueness constraints.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user, assigning its ID.
func (r *UserRepository) Create(user *domain.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByID finds a user by ID.
func (r *UserRepository) FindByID(id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// FindByEmail finds a user by email.
func (r *UserRepository) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// FindByUsernameOrEmail finds a user whose username or email matches.
// Used for the uniqueness pre-check at registration time.
func (r *UserRepository) FindByUsernameOrEmail(username, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.First(&user, "username = ? OR email = ?", username, email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// Save persists changes to an existing user.
func (r *UserRepository) Save(user *domain.User) error {
	if err := r.db.Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// Delete removes a user.
func (r *UserRepository) Delete(user *domain.User) error {
	if err := r.db.Delete(user).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// List returns users in insertion order, skipping offset rows and
// returning at most limit rows.
func (r *UserRepository) List(limit, offset int) ([]*domain.User, error) {
	var users []*domain.User
	if err := r.db.Order("id").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
