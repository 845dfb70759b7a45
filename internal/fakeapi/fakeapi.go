// Package fakeapi is an in-memory double of the stratcom jobs backend. The
// client test suite runs against it over httptest, so the contract the
// client codes to (routes, payloads, error envelope, bearer auth) is
// exercised end to end without a real deployment.
package fakeapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/mediaxsd-commits/stratcomjobsapp/internal/core/domain"
)

const tokenTTL = 24 * time.Hour

// account pairs a public user record with its password hash.
type account struct {
	user         domain.User
	passwordHash []byte
}

// Server holds all backend state behind a single mutex. Good enough for a
// test double; contention is not a concern here.
type Server struct {
	e         *echo.Echo
	jwtSecret string

	mu    sync.Mutex
	seq   int
	users map[string]*account
	jobs  map[string]*domain.Job
	files map[string][]byte
}

// New builds a Server with empty state. The first registered account becomes
// the admin; later ones are operators.
func New() *Server {
	s := &Server{
		jwtSecret: "fakeapi-secret",
		users:     make(map[string]*account),
		jobs:      make(map[string]*domain.Job),
		files:     make(map[string][]byte),
	}

	e := echo.New()
	e.HideBanner = true

	e.POST("/users/register", s.register)
	e.POST("/users/login", s.login)

	auth := e.Group("", s.requireAuth)
	auth.GET("/users/me", s.me)
	auth.GET("/users", s.listUsers, s.requireAdmin)
	auth.PUT("/users/:id", s.updateUser, s.requireAdmin)
	auth.DELETE("/users/:id", s.deleteUser, s.requireAdmin)

	auth.GET("/jobs", s.listJobs)
	auth.POST("/jobs", s.createJob)
	auth.GET("/jobs/:id", s.getJob)
	auth.PUT("/jobs/:id", s.updateJob)
	auth.DELETE("/jobs/:id", s.deleteJob)
	auth.POST("/jobs/:id/claim", s.claimJob)
	auth.POST("/jobs/:id/status", s.setJobStatus)
	auth.POST("/jobs/:id/submit", s.submit)
	auth.GET("/jobs/:id/download", s.download)

	s.e = e
	return s
}

// Handler exposes the server as an http.Handler for httptest.
func (s *Server) Handler() http.Handler {
	return s.e
}

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// --- auth ---

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if header == "" {
			return fail(c, http.StatusUnauthorized, "missing authorization header")
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return fail(c, http.StatusUnauthorized, "invalid authorization header")
		}

		claims := jwt.MapClaims{}
		tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(s.jwtSecret), nil
		})
		if err != nil || !tkn.Valid {
			return fail(c, http.StatusUnauthorized, "invalid token")
		}

		userID, _ := claims["user_id"].(string)
		role, _ := claims["role"].(string)
		c.Set("user_id", userID)
		c.Set("role", role)
		return next(c)
	}
}

func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if role, _ := c.Get("role").(string); role != domain.RoleAdmin {
			return fail(c, http.StatusForbidden, "admin role required")
		}
		return next(c)
	}
}

func (s *Server) issueToken(u domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    u.Role,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (s *Server) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "name, email and password are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range s.users {
		if acc.user.Email == req.Email {
			return fail(c, http.StatusConflict, "user already exists")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	role := domain.RoleOperator
	if len(s.users) == 0 {
		role = domain.RoleAdmin
	}
	now := time.Now().UTC()
	u := domain.User{
		ID:        s.nextID("user"),
		Name:      req.Name,
		Email:     req.Email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[u.ID] = &account{user: u, passwordHash: hash}

	token, err := s.issueToken(u)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusCreated, authResponse{Token: token, User: u})
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range s.users {
		if acc.user.Email != req.Email {
			continue
		}
		if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password)) != nil {
			break
		}
		token, err := s.issueToken(acc.user)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "internal error")
		}
		return c.JSON(http.StatusOK, authResponse{Token: token, User: acc.user})
	}
	return fail(c, http.StatusUnauthorized, "invalid credentials")
}

func (s *Server) me(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, _ := c.Get("user_id").(string)
	acc, ok := s.users[id]
	if !ok {
		return fail(c, http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, acc.user)
}

// --- user admin ---

func (s *Server) listUsers(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]domain.User, 0, len(s.users))
	for _, acc := range s.users {
		users = append(users, acc.user)
	}
	return c.JSON(http.StatusOK, users)
}

type updateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Server) updateUser(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.users[c.Param("id")]
	if !ok {
		return fail(c, http.StatusNotFound, "user not found")
	}
	acc.user.Name = req.Name
	acc.user.Email = req.Email
	acc.user.Role = req.Role
	acc.user.UpdatedAt = time.Now().UTC()
	return c.JSON(http.StatusOK, acc.user)
}

func (s *Server) deleteUser(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	if _, ok := s.users[id]; !ok {
		return fail(c, http.StatusNotFound, "user not found")
	}
	delete(s.users, id)
	return c.NoContent(http.StatusNoContent)
}

// --- jobs ---

type jobRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Fee         float64 `json:"fee"`
	Priority    string  `json:"priority"`
}

func (s *Server) listJobs(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := c.QueryParam("status")
	priority := c.QueryParam("priority")
	search := strings.ToLower(c.QueryParam("search"))

	jobs := make([]domain.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if status != "" && string(j.Status) != status {
			continue
		}
		if priority != "" && string(j.Priority) != priority {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(j.Title), search) {
			continue
		}
		jobs = append(jobs, *j)
	}
	return c.JSON(http.StatusOK, jobs)
}

func (s *Server) createJob(c echo.Context) error {
	var req jobRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}
	if req.Title == "" {
		return fail(c, http.StatusBadRequest, "title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	priority := domain.PriorityNormal
	if req.Priority != "" {
		p, err := domain.ParsePriority(req.Priority)
		if err != nil {
			return fail(c, http.StatusBadRequest, err.Error())
		}
		priority = p
	}

	now := time.Now().UTC()
	j := &domain.Job{
		ID:          s.nextID("job"),
		Title:       req.Title,
		Description: req.Description,
		Fee:         req.Fee,
		Status:      domain.StatusOpen,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.jobs[j.ID] = j
	return c.JSON(http.StatusCreated, j)
}

func (s *Server) getJob(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[c.Param("id")]
	if !ok {
		return fail(c, http.StatusNotFound, "job not found")
	}
	return c.JSON(http.StatusOK, j)
}

func (s *Server) updateJob(c echo.Context) error {
	var req jobRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[c.Param("id")]
	if !ok {
		return fail(c, http.StatusNotFound, "job not found")
	}
	j.Title = req.Title
	j.Description = req.Description
	j.Fee = req.Fee
	if req.Priority != "" {
		p, err := domain.ParsePriority(req.Priority)
		if err != nil {
			return fail(c, http.StatusBadRequest, err.Error())
		}
		j.Priority = p
	}
	j.UpdatedAt = time.Now().UTC()
	return c.JSON(http.StatusOK, j)
}

func (s *Server) deleteJob(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	if _, ok := s.jobs[id]; !ok {
		return fail(c, http.StatusNotFound, "job not found")
	}
	delete(s.jobs, id)
	delete(s.files, id)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) claimJob(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[c.Param("id")]
	if !ok {
		return fail(c, http.StatusNotFound, "job not found")
	}
	if j.Status != domain.StatusOpen {
		return fail(c, http.StatusConflict, "job is not open")
	}

	now := time.Now().UTC()
	userID, _ := c.Get("user_id").(string)
	j.Status = domain.StatusClaimed
	j.ClaimedBy = userID
	j.ClaimedAt = &now
	j.UpdatedAt = now
	return c.JSON(http.StatusOK, j)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) setJobStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[c.Param("id")]
	if !ok {
		return fail(c, http.StatusNotFound, "job not found")
	}
	next, err := domain.ParseStatus(req.Status)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	if !j.Status.CanTransitionTo(next) {
		return fail(c, http.StatusUnprocessableEntity,
			fmt.Sprintf("cannot transition from %s to %s", j.Status, next))
	}
	j.Status = next
	j.UpdatedAt = time.Now().UTC()
	return c.JSON(http.StatusOK, j)
}

// --- submissions ---

func (s *Server) submit(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "file field is required")
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "unreadable upload")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fail(c, http.StatusBadRequest, "unreadable upload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[c.Param("id")]
	if !ok {
		return fail(c, http.StatusNotFound, "job not found")
	}
	if userID, _ := c.Get("user_id").(string); j.ClaimedBy != userID {
		return fail(c, http.StatusForbidden, "job is not claimed by you")
	}
	if !j.Status.CanTransitionTo(domain.StatusSubmitted) {
		return fail(c, http.StatusUnprocessableEntity,
			fmt.Sprintf("cannot submit a %s job", j.Status))
	}

	now := time.Now().UTC()
	s.files[j.ID] = data
	j.Status = domain.StatusSubmitted
	j.SubmissionName = fh.Filename
	j.SubmittedAt = &now
	j.UpdatedAt = now
	return c.JSON(http.StatusOK, j)
}

func (s *Server) download(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[c.Param("id")]
	if !ok {
		return fail(c, http.StatusNotFound, "job not found")
	}
	data, ok := s.files[j.ID]
	if !ok {
		return fail(c, http.StatusNotFound, "no submission for this job")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, j.SubmissionName))
	return c.Blob(http.StatusOK, "application/pdf", data)
}
