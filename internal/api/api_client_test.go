package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-printshop-storefront/internal/api"
	"go-printshop-storefront/internal/apperror"
)

func envelope(data any) gin.H {
	return gin.H{"success": true, "data": data, "message": ""}
}

func errorEnvelope(code, message string) gin.H {
	return gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
		"message": message,
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestClient_BearerInjection(t *testing.T) {
	t.Run("success_token_attached", func(t *testing.T) {
		r := newTestRouter()
		var gotAuth string
		r.GET("/api/auth/me", func(c *gin.Context) {
			gotAuth = c.GetHeader("Authorization")
			c.JSON(http.StatusOK, envelope(api.User{ID: "u1", Name: "Demo"}))
		})
		srv := httptest.NewServer(r)
		defer srv.Close()

		client := api.NewClient(srv.URL, api.TokenFunc(func() string { return "tok-123" }))
		user, err := client.Me(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "Bearer tok-123", gotAuth)
	})

	t.Run("success_no_token_sends_unauthenticated", func(t *testing.T) {
		r := newTestRouter()
		var gotAuth string
		r.GET("/api/wishlist", func(c *gin.Context) {
			gotAuth = c.GetHeader("Authorization")
			c.JSON(http.StatusOK, envelope([]gin.H{}))
		})
		srv := httptest.NewServer(r)
		defer srv.Close()

		client := api.NewClient(srv.URL, api.TokenFunc(func() string { return "" }))
		_, err := client.Wishlist(context.Background())

		require.NoError(t, err)
		assert.Empty(t, gotAuth)
	})
}

func TestClient_ErrorNormalization(t *testing.T) {
	t.Run("error_body_message_preferred", func(t *testing.T) {
		r := newTestRouter()
		r.POST("/api/orders", func(c *gin.Context) {
			c.JSON(http.StatusBadRequest, errorEnvelope(apperror.CodeInvalidInput, "Order total mismatch"))
		})
		srv := httptest.NewServer(r)
		defer srv.Close()

		client := api.NewClient(srv.URL, nil)
		_, err := client.CreateOrder(context.Background(), api.CreateOrderRequest{})

		require.Error(t, err)
		assert.Equal(t, "Order total mismatch", apperror.UserMessage(err))

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	})

	t.Run("error_undecodable_body_generic_fallback", func(t *testing.T) {
		r := newTestRouter()
		r.GET("/api/auth/me", func(c *gin.Context) {
			c.String(http.StatusInternalServerError, "<html>oops</html>")
		})
		srv := httptest.NewServer(r)
		defer srv.Close()

		client := api.NewClient(srv.URL, nil)
		_, err := client.Me(context.Background())

		require.Error(t, err)
		assert.Equal(t, apperror.GenericMessage, apperror.UserMessage(err))
	})

	t.Run("error_connection_refused_generic_fallback", func(t *testing.T) {
		client := api.NewClient("http://127.0.0.1:1", nil)
		_, err := client.Me(context.Background())

		require.Error(t, err)
		assert.Equal(t, apperror.GenericMessage, apperror.UserMessage(err))
	})
}

func TestClient_WishlistShapeNormalization(t *testing.T) {
	t.Run("success_mixed_shapes_one_canonical_form", func(t *testing.T) {
		r := newTestRouter()
		r.GET("/api/wishlist", func(c *gin.Context) {
			c.JSON(http.StatusOK, envelope([]gin.H{
				{"id": "w1", "product": gin.H{"id": "p1", "name": "Mug", "price": "15000"}},
				{"id": "w2", "product": "p2"},
			}))
		})
		srv := httptest.NewServer(r)
		defer srv.Close()

		client := api.NewClient(srv.URL, nil)
		entries, err := client.Wishlist(context.Background())

		require.NoError(t, err)
		require.Len(t, entries, 2)

		assert.Equal(t, "p1", entries[0].ProductID)
		require.NotNil(t, entries[0].Product)
		assert.Equal(t, "Mug", entries[0].Product.Name)
		assert.True(t, entries[0].Product.Price.Equal(decimal.NewFromInt(15000)))

		assert.Equal(t, "p2", entries[1].ProductID)
		assert.Nil(t, entries[1].Product)
	})
}
