package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-printshop-storefront/internal/apperror"
)

// The real backend is inconsistent about the wishlist entry shape: list
// responses populate the product object while mutation responses carry the
// bare product id. The mock reproduces that on purpose so the client's
// normalization stays exercised.

func (s *Server) handleWishlistList(c *gin.Context) {
	userID := currentUserID(c)

	s.mu.Lock()
	items := s.wishlists[userID]
	out := make([]gin.H, 0, len(items))
	for _, it := range items {
		out = append(out, gin.H{"id": it.ID, "product": it.Product})
	}
	s.mu.Unlock()

	respondSuccess(c, http.StatusOK, "", out)
}

func (s *Server) handleWishlistAdd(c *gin.Context) {
	userID := currentUserID(c)
	productID := c.Param("productId")

	s.mu.Lock()
	product, ok := s.products[productID]
	if !ok {
		s.mu.Unlock()
		respondError(c, http.StatusNotFound, apperror.CodeNotFound, "Product not found")
		return
	}

	for _, it := range s.wishlists[userID] {
		if it.Product.ID == productID {
			s.mu.Unlock()
			respondError(c, http.StatusConflict, apperror.CodeConflict, "Product already in wishlist")
			return
		}
	}

	s.wishlists[userID] = append(s.wishlists[userID], wishlistItem{
		ID:      uuid.NewString(),
		Product: product,
	})
	out := s.bareIDEntries(userID)
	s.mu.Unlock()

	respondSuccess(c, http.StatusOK, "Product added to wishlist", out)
}

func (s *Server) handleWishlistRemove(c *gin.Context) {
	userID := currentUserID(c)
	productID := c.Param("productId")

	s.mu.Lock()
	items := s.wishlists[userID]
	found := false
	next := items[:0]
	for _, it := range items {
		if it.Product.ID == productID {
			found = true
			continue
		}
		next = append(next, it)
	}
	s.wishlists[userID] = next
	out := s.bareIDEntries(userID)
	s.mu.Unlock()

	if !found {
		respondError(c, http.StatusNotFound, apperror.CodeNotFound, "Product not in wishlist")
		return
	}

	respondSuccess(c, http.StatusOK, "Product removed from wishlist", out)
}

// bareIDEntries renders the mutation-response shape. Callers hold s.mu.
func (s *Server) bareIDEntries(userID string) []gin.H {
	items := s.wishlists[userID]
	out := make([]gin.H, 0, len(items))
	for _, it := range items {
		out = append(out, gin.H{"id": it.ID, "product": it.Product.ID})
	}
	return out
}
