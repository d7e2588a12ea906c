// Package httpapi exposes the account operations over HTTP with JSON bodies.
// Sessions travel in an HTTP-only cookie; handlers translate service errors
// into status codes and keep all business logic out of this package.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/techasish/accountd/internal/logging"
	"github.com/techasish/accountd/internal/server/models"
)

// Service is the account API consumed by the handlers.
type Service interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	SendVerifyOTP(ctx context.Context, userID string) (alreadyVerified bool, err error)
	VerifyEmail(ctx context.Context, userID, code string) error
	SendResetOTP(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// Server is the public HTTP endpoint of the account service.
type Server struct {
	service       Service
	logger        logging.Logger
	secret        []byte
	sessionTTL    time.Duration
	secureCookies bool

	httpServer *http.Server
}

func NewServer(addr string, service Service, logger logging.Logger,
	secret []byte, sessionTTL time.Duration, secureCookies bool) *Server {
	s := &Server{
		service:       service,
		logger:        logger.With("module", "httpapi"),
		secret:        secret,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", s.register)
		authGroup.POST("/login", s.login)
		authGroup.POST("/logout", s.logout)
		authGroup.POST("/send-reset-otp", s.sendResetOTP)
		authGroup.POST("/reset-password", s.resetPassword)

		authGroup.GET("/is-auth", s.requireSession, s.isAuthenticated)
		authGroup.POST("/send-verify-otp", s.requireSession, s.sendVerifyOTP)
		authGroup.POST("/verify-email", s.requireSession, s.verifyEmail)
	}

	userGroup := r.Group("/api/user", s.requireSession)
	{
		userGroup.GET("/data", s.userData)
	}

	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "http server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info(shutdownCtx, "http server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
