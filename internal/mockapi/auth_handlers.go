package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"go-printshop-storefront/internal/api"
	"go-printshop-storefront/internal/apperror"
)

func (s *Server) handleLogin(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Email and password are required")
		return
	}

	s.mu.Lock()
	u, ok := s.usersByEmail[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !ok {
		respondError(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Invalid email or password")
		return
	}

	token, err := s.generateToken(u)
	if err != nil {
		s.logger.Error("token generation failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, apperror.CodeInternalError, "Failed to generate authentication token")
		return
	}

	respondSuccess(c, http.StatusOK, "Logged in", api.AuthResponse{
		Token: token,
		User:  s.userResponse(u),
	})
}

func (s *Server) handleRegister(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Name, email and password are required")
		return
	}

	email := strings.ToLower(req.Email)

	s.mu.Lock()
	if _, exists := s.usersByEmail[email]; exists {
		s.mu.Unlock()
		respondError(c, http.StatusConflict, apperror.CodeConflict, "Email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.mu.Unlock()
		respondError(c, http.StatusInternalServerError, apperror.CodeInternalError, "Failed to create account")
		return
	}

	u := &user{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        email,
		Role:         api.RoleUser,
		Wallet:       decimal.Zero,
		passwordHash: hash,
	}
	s.usersByEmail[email] = u
	s.usersByID[u.ID] = u
	s.mu.Unlock()

	token, err := s.generateToken(u)
	if err != nil {
		respondError(c, http.StatusInternalServerError, apperror.CodeInternalError, "Failed to generate authentication token")
		return
	}

	respondSuccess(c, http.StatusCreated, "Account created", api.AuthResponse{
		Token: token,
		User:  s.userResponse(u),
	})
}

func (s *Server) handleMe(c *gin.Context) {
	s.mu.Lock()
	u := s.usersByID[currentUserID(c)]
	s.mu.Unlock()

	respondSuccess(c, http.StatusOK, "", s.userResponse(u))
}

func (s *Server) handleListProducts(c *gin.Context) {
	s.mu.Lock()
	out := make([]api.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	s.mu.Unlock()

	respondSuccess(c, http.StatusOK, "", out)
}

func (s *Server) generateToken(u *user) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"role":    string(u.Role),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
