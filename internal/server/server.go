package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taskforge/taskforge/internal/auth"
	"github.com/taskforge/taskforge/internal/repository"
	"github.com/taskforge/taskforge/internal/task"
)

// Logger is the minimal leveled logger the HTTP layer needs.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the HTTP server options.
type Config struct {
	Addr  string
	Debug bool
}

// Server owns the fiber app and the route table.
type Server struct {
	app    *fiber.App
	cfg    Config
	repo   repository.Manager
	auth   *auth.Service
	tasks  *task.Service
	logger Logger
}

// New builds the server and registers every route.
func New(cfg Config, repo repository.Manager, authSvc *auth.Service, taskSvc *task.Service, logger Logger) *Server {
	s := &Server{
		cfg:    cfg,
		repo:   repo,
		auth:   authSvc,
		tasks:  taskSvc,
		logger: logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "taskforge",
		ErrorHandler: errorHandler(cfg.Debug, logger),
	})

	s.routes()

	return s
}

func (s *Server) routes() {
	api := s.app.Group("/api")

	ath := api.Group("/auth")
	ath.Post("/register", s.handleRegister)
	ath.Get("/verify-email", s.handleVerifyEmail)
	ath.Post("/verify-email", s.handleVerifyEmail)
	ath.Post("/login", s.handleLogin)
	ath.Post("/refresh", s.handleRefresh)
	ath.Post("/logout", s.Authenticate, s.handleLogout)
	ath.Post("/logout-all", s.Authenticate, s.handleLogoutAll)
	ath.Post("/forgot-password", s.handleForgotPassword)
	ath.Post("/reset-password", s.handleResetPassword)
	ath.Post("/resend-verification", s.Authenticate, s.handleResendVerification)
	ath.Get("/me", s.Authenticate, s.handleMe)

	api.Get("/profile", s.Authenticate, s.handleGetProfile)
	api.Put("/profile", s.Authenticate, s.handleUpdateProfile)
	api.Get("/profile/:userId", s.Authenticate, s.RequireAdmin, s.handleAdminGetUser)
	api.Put("/profile/:userId", s.Authenticate, s.RequireAdmin, s.handleAdminUpdateProfile)

	admin := api.Group("/admin", s.Authenticate, s.RequireAdmin)
	admin.Get("/users", s.handleAdminListUsers)
	admin.Get("/users/:userId", s.handleAdminGetUser)
	admin.Delete("/users/:userId", s.handleAdminDeleteUser)

	api.Get("/tasks", s.handleListTasks)
	api.Post("/tasks", s.handleCreateTask)
	api.Get("/tasks/:id", s.handleGetTask)
	api.Put("/tasks/:id", s.handleUpdateTask)
	api.Delete("/tasks/:id", s.handleDeleteTask)
	api.Get("/tasks/:id/subtasks", s.handleListSubtasks)
	api.Post("/tasks/:id/subtasks", s.handleCreateSubtask)

	api.Get("/projects", s.handleListProjects)
	api.Post("/projects", s.OptionalAuth, s.handleCreateProject)

	api.Get("/organizations", s.handleListOrganizations)
	api.Post("/organizations", s.OptionalAuth, s.handleCreateOrganization)
	api.Get("/organizations/:id", s.handleGetOrganization)
	api.Get("/organizations/:id/teams", s.handleListTeams)
	api.Post("/teams", s.OptionalAuth, s.handleCreateTeam)
}

// Listen starts serving on the configured address, blocking until the
// app shuts down.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Addr)
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app, used by tests to drive requests through
// the full middleware chain.
func (s *Server) App() *fiber.App {
	return s.app
}
