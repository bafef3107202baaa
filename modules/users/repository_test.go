package users

import (
	"errors"
	"testing"

	domain "github.com/example/user-crud-demo/domain/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func mustCreate(t *testing.T, repo *UserRepository, username, email string) *domain.User {
	t.Helper()

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "digest",
	}
	if err := repo.Create(user); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func TestUserRepository_CreateAssignsSequentialIDs(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	first := mustCreate(t, repo, "alice", "alice@example.com")
	second := mustCreate(t, repo, "bob", "bob@example.com")

	if first.ID != 1 {
		t.Errorf("first.ID = %d, want 1", first.ID)
	}
	if second.ID != 2 {
		t.Errorf("second.ID = %d, want 2", second.ID)
	}
	if first.CreatedAt.IsZero() || first.UpdatedAt.IsZero() {
		t.Error("timestamps not set on creation")
	}
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	mustCreate(t, repo, "alice", "alice@example.com")

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{
			name:     "duplicate username",
			username: "alice",
			email:    "other@example.com",
		},
		{
			name:     "duplicate email",
			username: "other",
			email:    "alice@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(&domain.User{
				Username:     tt.username,
				Email:        tt.email,
				PasswordHash: "digest",
			})
			if !errors.Is(err, ErrDuplicateUser) {
				t.Errorf("Create() error = %v, want ErrDuplicateUser", err)
			}
		})
	}
}

func TestUserRepository_FindByID(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	created := mustCreate(t, repo, "alice", "alice@example.com")

	t.Run("existing user", func(t *testing.T) {
		found, err := repo.FindByID(created.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if found.Username != "alice" {
			t.Errorf("found.Username = %q, want %q", found.Username, "alice")
		}
	})

	t.Run("missing user", func(t *testing.T) {
		if _, err := repo.FindByID(999); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("FindByID() error = %v, want ErrUserNotFound", err)
		}
	})
}

func TestUserRepository_FindByEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	mustCreate(t, repo, "alice", "alice@example.com")

	found, err := repo.FindByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if found.Username != "alice" {
		t.Errorf("found.Username = %q, want %q", found.Username, "alice")
	}

	if _, err := repo.FindByEmail("nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("FindByEmail() error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_FindByUsernameOrEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	created := mustCreate(t, repo, "alice", "alice@example.com")

	tests := []struct {
		name     string
		username string
		email    string
		wantHit  bool
	}{
		{
			name:     "matches username only",
			username: "alice",
			email:    "fresh@example.com",
			wantHit:  true,
		},
		{
			name:     "matches email only",
			username: "fresh",
			email:    "alice@example.com",
			wantHit:  true,
		},
		{
			name:     "matches both",
			username: "alice",
			email:    "alice@example.com",
			wantHit:  true,
		},
		{
			name:     "matches neither",
			username: "fresh",
			email:    "fresh@example.com",
			wantHit:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindByUsernameOrEmail(tt.username, tt.email)
			if tt.wantHit {
				if err != nil {
					t.Fatalf("FindByUsernameOrEmail() error = %v", err)
				}
				if found.ID != created.ID {
					t.Errorf("found.ID = %d, want %d", found.ID, created.ID)
				}
				return
			}
			if !errors.Is(err, ErrUserNotFound) {
				t.Errorf("FindByUsernameOrEmail() error = %v, want ErrUserNotFound", err)
			}
		})
	}
}

func TestUserRepository_SaveDuplicate(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	mustCreate(t, repo, "alice", "alice@example.com")
	bob := mustCreate(t, repo, "bob", "bob@example.com")

	bob.Email = "alice@example.com"
	if err := repo.Save(bob); !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("Save() error = %v, want ErrDuplicateUser", err)
	}
}

func TestUserRepository_Delete(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	created := mustCreate(t, repo, "alice", "alice@example.com")

	if err := repo.Delete(created); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := repo.FindByID(created.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("FindByID() after delete error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_ListPagination(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	mustCreate(t, repo, "alice", "alice@example.com")
	mustCreate(t, repo, "bob", "bob@example.com")
	mustCreate(t, repo, "carol", "carol@example.com")

	tests := []struct {
		name          string
		limit         int
		offset        int
		wantUsernames []string
	}{
		{
			name:          "first page of one",
			limit:         1,
			offset:        0,
			wantUsernames: []string{"alice"},
		},
		{
			name:          "second page of two",
			limit:         2,
			offset:        1,
			wantUsernames: []string{"bob", "carol"},
		},
		{
			name:          "offset past the end",
			limit:         10,
			offset:        5,
			wantUsernames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := repo.List(tt.limit, tt.offset)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(page) != len(tt.wantUsernames) {
				t.Fatalf("List() returned %d users, want %d", len(page), len(tt.wantUsernames))
			}
			for i, want := range tt.wantUsernames {
				if page[i].Username != want {
					t.Errorf("page[%d].Username = %q, want %q", i, page[i].Username, want)
				}
			}
		})
	}
}
