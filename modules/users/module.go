package users

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	domain "github.com/example/user-crud-demo/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// UsersModule provides user management services.
type UsersModule struct {
	db      *gorm.DB
	service *UserService
	dbPath  string
}

// Compile-time interface checks.
var _ mono.Module = (*UsersModule)(nil)
var _ mono.ServiceProviderModule = (*UsersModule)(nil)
var _ mono.HealthCheckableModule = (*UsersModule)(nil)

// NewModule creates a new UsersModule.
func NewModule() *UsersModule {
	dbPath := os.Getenv("USERS_DB_PATH")
	if dbPath == "" {
		dbPath = "users.db"
	}
	return &UsersModule{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *UsersModule) Name() string {
	return "users"
}

// Start opens the database, migrates the schema and builds the service.
func (m *UsersModule) Start(_ context.Context) error {
	// TranslateError maps driver unique-constraint violations onto
	// gorm.ErrDuplicatedKey, which the repository relies on.
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	repo := NewUserRepository(db)
	hasher := NewPasswordHasher()
	tokens := NewTokenManager(loadTokenConfig())

	m.service = NewUserService(repo, hasher, tokens)

	log.Printf("[users] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop shuts down the module.
func (m *UsersModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[users] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *UsersModule) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *UsersModule) RegisterServices(container mono.ServiceContainer) error {
	services := map[string]func() error{
		"create-user": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "create-user", json.Unmarshal, json.Marshal, m.handleCreateUser)
		},
		"login": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "login", json.Unmarshal, json.Marshal, m.handleLogin)
		},
		"current-user": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "current-user", json.Unmarshal, json.Marshal, m.handleCurrentUser)
		},
		"get-user": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser)
		},
		"list-users": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "list-users", json.Unmarshal, json.Marshal, m.handleListUsers)
		},
		"update-user": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "update-user", json.Unmarshal, json.Marshal, m.handleUpdateUser)
		},
		"delete-user": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "delete-user", json.Unmarshal, json.Marshal, m.handleDeleteUser)
		},
	}

	for name, register := range services {
		if err := register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", name, err)
		}
	}

	log.Printf("[users] Registered services: create-user, login, current-user, get-user, list-users, update-user, delete-user")
	return nil
}

func (m *UsersModule) handleCreateUser(ctx context.Context, req CreateUserRequest, _ *mono.Msg) (UserReply, error) {
	user, err := m.service.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return UserReply{}, err
	}
	return toUserReply(user), nil
}

func (m *UsersModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginReply, error) {
	token, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return LoginReply{}, err
	}
	return LoginReply{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	}, nil
}

func (m *UsersModule) handleCurrentUser(ctx context.Context, req CurrentUserRequest, _ *mono.Msg) (UserReply, error) {
	user, err := m.service.CurrentUser(ctx, req.Token)
	if err != nil {
		return UserReply{}, err
	}
	return toUserReply(user), nil
}

func (m *UsersModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (UserReply, error) {
	user, err := m.service.Get(ctx, req.ID)
	if err != nil {
		return UserReply{}, err
	}
	return toUserReply(user), nil
}

func (m *UsersModule) handleListUsers(ctx context.Context, req ListUsersRequest, _ *mono.Msg) (ListUsersReply, error) {
	list, err := m.service.List(ctx, req.Limit, req.Offset)
	if err != nil {
		return ListUsersReply{}, err
	}
	reply := ListUsersReply{Users: make([]UserReply, 0, len(list))}
	for _, user := range list {
		reply.Users = append(reply.Users, toUserReply(user))
	}
	return reply, nil
}

func (m *UsersModule) handleUpdateUser(ctx context.Context, req UpdateUserRequest, _ *mono.Msg) (UserReply, error) {
	user, err := m.service.Update(ctx, req.ID, UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return UserReply{}, err
	}
	return toUserReply(user), nil
}

func (m *UsersModule) handleDeleteUser(ctx context.Context, req DeleteUserRequest, _ *mono.Msg) (DeleteUserReply, error) {
	if err := m.service.Delete(ctx, req.ID); err != nil {
		return DeleteUserReply{}, err
	}
	return DeleteUserReply{Deleted: true}, nil
}

func toUserReply(user *domain.User) UserReply {
	return UserReply{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// loadTokenConfig loads token configuration from environment variables.
func loadTokenConfig() TokenConfig {
	config := DefaultTokenConfig()

	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		config.SecretKey = secret
	}
	if issuer := os.Getenv("JWT_ISSUER"); issuer != "" {
		config.Issuer = issuer
	}
	if minutes := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); minutes != "" {
		if n, err := strconv.Atoi(minutes); err == nil && n > 0 {
			config.AccessExpiry = time.Duration(n) * time.Minute
		}
	}

	return config
}
