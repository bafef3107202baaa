package api

import (
	"log"
	"strings"

	"github.com/example/user-crud-demo/modules/users"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains the HTTP handlers for the user API.
type Handlers struct {
	users UsersPort
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(port UsersPort) *Handlers {
	return &Handlers{users: port}
}

// CreateUser handles POST /users/. Registration is public.
func (h *Handlers) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return unprocessable(c, "Invalid request body")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return unprocessable(c, "Username, email and password are required")
	}

	created, err := h.users.CreateUser(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(publicUser(created))
}

// ListUsers handles GET /users/. Requires a valid token; any
// authenticated user may list public records.
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	offset := c.QueryInt("offset", 0)

	page, err := h.users.ListUsers(c.UserContext(), limit, offset)
	if err != nil {
		return h.serviceError(c, err)
	}

	resp := UserListResponse{Users: make([]UserResponse, 0, len(page.Users))}
	for i := range page.Users {
		resp.Users = append(resp.Users, publicUser(&page.Users[i]))
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// GetUser handles GET /users/{id}. Public.
func (h *Handlers) GetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return unprocessable(c, "User id must be an integer")
	}

	found, err := h.users.GetUser(c.UserContext(), uint(id))
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(publicUser(found))
}

// UpdateUser handles PUT /users/{id}. The ownership check runs before
// anything else, so updating another user's id fails with 403
// regardless of payload or target existence.
func (h *Handlers) UpdateUser(c *fiber.Ctx) error {
	currentUser, ok := c.Locals(UserContextKey).(*users.UserReply)
	if !ok {
		return unauthorized(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return unprocessable(c, "User id must be an integer")
	}
	if currentUser.ID != uint(id) {
		return forbidden(c)
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return unprocessable(c, "Invalid request body")
	}

	updated, err := h.users.UpdateUser(c.UserContext(), users.UpdateUserRequest{
		ID:       currentUser.ID,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(publicUser(updated))
}

// DeleteUser handles DELETE /users/{id}. Ownership precedes existence:
// deleting a non-existent id as a different user yields 403.
func (h *Handlers) DeleteUser(c *fiber.Ctx) error {
	currentUser, ok := c.Locals(UserContextKey).(*users.UserReply)
	if !ok {
		return unauthorized(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return unprocessable(c, "User id must be an integer")
	}
	if currentUser.ID != uint(id) {
		return forbidden(c)
	}

	if err := h.users.DeleteUser(c.UserContext(), currentUser.ID); err != nil {
		return h.serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(MessageResponse{Message: "User deleted!"})
}

// Login handles POST /auth/token. The form's username field carries
// the user's email, OAuth2 password-flow style.
func (h *Handlers) Login(c *fiber.Ctx) error {
	email := c.FormValue("username")
	password := c.FormValue("password")
	if email == "" || password == "" {
		return unprocessable(c, "Username and password are required")
	}

	token, err := h.users.Login(c.UserContext(), email, password)
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	})
}

// serviceError maps user service errors onto HTTP responses with fixed
// detail messages. Errors cross the service container as text, so they
// are matched by message. Broader messages must be checked before
// their substrings.
func (h *Handlers) serviceError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "username or email already exists"):
		return conflict(c, "Username or Email already exists")
	case strings.Contains(errStr, "username already exists"):
		return conflict(c, "Username already exists")
	case strings.Contains(errStr, "email already exists"):
		return conflict(c, "Email already exists")
	case strings.Contains(errStr, "user not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Detail: "User not found!",
		})
	case strings.Contains(errStr, "incorrect email or password"):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Detail: "Incorrect email or password",
		})
	case strings.Contains(errStr, "could not validate credentials"):
		return unauthorized(c)
	case strings.Contains(errStr, "invalid email format"):
		return unprocessable(c, "Invalid email address")
	default:
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Detail: "Internal server error",
		})
	}
}

func publicUser(u *users.UserReply) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

func conflict(c *fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Detail: detail})
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
		Detail: "Not enough permissions",
	})
}

func unprocessable(c *fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Detail: detail})
}
