package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-printshop-storefront/internal/api"
	"go-printshop-storefront/internal/apperror"
)

// handleTopUp credits the wallet directly. Demo path only; a real deployment
// settles top-ups through the payment gateway.
func (s *Server) handleTopUp(c *gin.Context) {
	var req api.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Invalid top-up payload")
		return
	}
	if req.Amount.IsNegative() || req.Amount.IsZero() {
		respondError(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Top-up amount must be positive")
		return
	}

	s.mu.Lock()
	u := s.usersByID[currentUserID(c)]
	u.Wallet = u.Wallet.Add(req.Amount)
	out := s.userResponse(u)
	s.mu.Unlock()

	respondSuccess(c, http.StatusOK, "Wallet topped up", out)
}
