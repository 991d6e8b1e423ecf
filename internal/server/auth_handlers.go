package server

import (
	"log/slog"
	"strconv"
	"time"

	"kms/internal/middleware"
	"kms/internal/models"
	"kms/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse is the public view of a user; the password hash never leaves
// the models layer thanks to its json:"-" tag, this narrows the rest.
type userResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func publicUser(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// Register creates a new account with the default user role.
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username, email and password are required"))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid email format"))
	}
	if err := validation.ValidatePassword(req.Password, s.config.PasswordMinLen); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(c.UserContext(), req.Username, req.Email)
	if err != nil {
		return respondServiceError(c, err)
	}
	if exists {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Username or email already exists"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondServiceError(c, models.NewInternalError(err))
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := s.userRepo.Create(c.UserContext(), user); err != nil {
		// Unique index race between the existence check and the insert.
		return respondServiceError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "user registered",
		slog.Uint64("user_id", uint64(user.ID)), slog.String("username", user.Username))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registered successfully",
		"user":    publicUser(user),
	})
}

// Login authenticates by email and password and issues a signed JWT. Unknown
// email and wrong password produce byte-identical responses.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	user, err := s.userRepo.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		return respondServiceError(c, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid email or password"))
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid email or password"))
	}

	token, err := s.generateToken(user)
	if err != nil {
		return respondServiceError(c, models.NewInternalError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "user logged in",
		slog.Uint64("user_id", uint64(user.ID)))

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login Successfully",
		"token":   token,
		"user":    publicUser(user),
	})
}

// Me returns the authenticated user's current profile from the database.
func (s *Server) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	user, err := s.userRepo.GetByID(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if user == nil {
		// Token still valid but the account was deleted since issuance.
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", userID))
	}

	return c.JSON(fiber.Map{"user": publicUser(user)})
}

// Logout revokes the presented token by blacklisting its jti until expiry.
// Without Redis the logout is acknowledged but the token stays usable.
func (s *Server) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("jti").(string)
	tokenExp, _ := c.Locals("tokenExp").(int64)

	if jti != "" && s.redis != nil {
		ttl := time.Until(time.Unix(tokenExp, 0))
		if ttl > 0 {
			if err := s.redis.Set(c.Context(), "blacklist:"+jti, "1", ttl).Err(); err != nil {
				middleware.Logger.WarnContext(c.UserContext(), "failed to blacklist token",
					slog.String("error", err.Error()))
			}
		}
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// GetAllUsers lists every account, newest first. Admin only.
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	users, err := s.userRepo.List(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, publicUser(&users[i]))
	}
	return c.JSON(fiber.Map{"users": out})
}

// DeleteUser removes an account. Articles and comments keep their author id.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.userRepo.Delete(c.UserContext(), id); err != nil {
		return respondServiceError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "user deleted",
		slog.Uint64("user_id", uint64(id)))

	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// generateToken signs an HS256 JWT carrying identity and role claims. The jti
// makes individual tokens revocable via the Redis denylist.
func (s *Server) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"role":     user.Role,
		"iss":      "kms",
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"exp":      now.Add(time.Duration(s.config.JWTExpiresHours) * time.Hour).Unix(),
		"jti":      uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
