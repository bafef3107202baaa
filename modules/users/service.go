package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	domain "github.com/example/user-crud-demo/domain/user"
)

var (
	// ErrUsernameTaken is returned when the requested username is
	// already stored. Takes priority over ErrEmailTaken when the same
	// row matches both.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken is returned when the requested email is already stored.
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password, so a caller cannot probe which one failed.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrInvalidEmail is returned when the email does not parse.
	ErrInvalidEmail = errors.New("invalid email format")
)

// UserUpdate carries a partial update. Nil fields retain the stored value.
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
}

// UserService implements user management on top of the repository,
// password hasher and token manager.
type UserService struct {
	repo   *UserRepository
	hasher *PasswordHasher
	tokens *TokenManager
}

// NewUserService creates a new UserService.
func NewUserService(repo *UserRepository, hasher *PasswordHasher, tokens *TokenManager) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a new user after checking username and email
// uniqueness. The database constraint is the second line of defense
// against concurrent registrations.
func (s *UserService) Register(_ context.Context, username, email, password string) (*domain.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	existing, err := s.repo.FindByUsernameOrEmail(username, email)
	if err == nil {
		if existing.Username == username {
			return nil, ErrUsernameTaken
		}
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies the credentials and issues a bearer token whose
// subject is the user's email.
func (s *UserService) Login(_ context.Context, email, password string) (*domain.Token, error) {
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.tokens.Generate(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &domain.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}, nil
}

// CurrentUser validates the token and resolves its subject to a stored
// user. A valid token whose subject no longer exists fails with the
// same error as a bad token.
func (s *UserService) CurrentUser(_ context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.FindByEmail(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return user, nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(_ context.Context, id uint) (*domain.User, error) {
	return s.repo.FindByID(id)
}

// List returns users in insertion order, windowed by limit and offset.
func (s *UserService) List(_ context.Context, limit, offset int) ([]*domain.User, error) {
	return s.repo.List(limit, offset)
}

// Update overwrites only the fields present in the update. A new
// password is rehashed before storage.
func (s *UserService) Update(_ context.Context, id uint, update UserUpdate) (*domain.User, error) {
	user, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.Email != nil {
		if _, err := mail.ParseAddress(*update.Email); err != nil {
			return nil, ErrInvalidEmail
		}
		user.Email = *update.Email
	}
	if update.Password != nil {
		passwordHash, err := s.hasher.Hash(*update.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = passwordHash
	}

	if err := s.repo.Save(user); err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes a user by ID.
func (s *UserService) Delete(_ context.Context, id uint) error {
	user, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(user)
}
