package fakeapi

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/dokanload/internal/client/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

var roles = map[string]string{"buyer": "Buyer", "seller": "Seller", "admin": "Admin"}

// validationError renders the field-error body the client maps to
// ValidationError.
func validationError(c echo.Context, fields map[string][]string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"title":  "One or more validation errors occurred.",
		"errors": fields,
	})
}

// AddUser creates an account directly, bypassing the register endpoint.
func (s *Server) AddUser(username, email, password, role string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	if r, ok := roles[strings.ToLower(role)]; ok {
		role = r
	} else {
		role = "Buyer"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(email)
	if _, exists := s.users[key]; exists {
		return echo.NewHTTPError(http.StatusConflict, "Email already registered")
	}
	s.users[key] = &user{
		ID:           uuid.NewString(),
		Email:        key,
		Username:     username,
		Role:         role,
		PasswordHash: hash,
	}
	return nil
}

func (s *Server) register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	fields := map[string][]string{}
	if strings.TrimSpace(req.Username) == "" {
		fields["Username"] = append(fields["Username"], "The Username field is required.")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["Email"] = append(fields["Email"], "The Email field is not a valid e-mail address.")
	}
	if len(req.Password) < 6 {
		fields["Password"] = append(fields["Password"], "The Password must be at least 6 characters long.")
	}
	if len(fields) > 0 {
		return validationError(c, fields)
	}

	if err := s.AddUser(req.Username, req.Email, req.Password, req.Role); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Registration successful"})
}

func (s *Server) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	s.mu.RLock()
	u := s.users[strings.ToLower(req.Email)]
	var cp user
	if u != nil {
		cp = *u
	}
	s.mu.RUnlock()

	if u == nil || bcrypt.CompareHashAndPassword(cp.PasswordHash, []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := GenerateToken(&cp, s.secret, s.ttl)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

func (s *Server) profileOf(u *user) models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Profile{Username: u.Username, Role: u.Role, AvatarURL: u.AvatarURL, Bio: u.Bio}
}

func (s *Server) getProfile(c echo.Context) error {
	return c.JSON(http.StatusOK, s.profileOf(currentUser(c)))
}

func (s *Server) updateProfile(c echo.Context) error {
	u := currentUser(c)
	username := strings.TrimSpace(c.FormValue("username"))
	bio := c.FormValue("bio")

	fields := map[string][]string{}
	if username == "" {
		fields["Username"] = []string{"The Username field is required."}
	}
	if len(bio) > 500 {
		fields["Bio"] = []string{"The Bio must be at most 500 characters long."}
	}
	if len(fields) > 0 {
		return validationError(c, fields)
	}

	avatar := ""
	if fh, err := c.FormFile("file"); err == nil {
		avatar = "/avatars/" + uuid.NewString() + "-" + fh.Filename
	} else if !errors.Is(err, http.ErrMissingFile) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	s.mu.Lock()
	u.Username = username
	u.Bio = bio
	if avatar != "" {
		u.AvatarURL = avatar
	}
	s.mu.Unlock()

	return c.JSON(http.StatusOK, s.profileOf(u))
}
