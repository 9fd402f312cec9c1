package wishlist_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"go-printshop-storefront/internal/api"
	"go-printshop-storefront/internal/apperror"
	"go-printshop-storefront/internal/wishlist"
)

// ==================== FAKE API ====================

type fakeWishlistAPI struct {
	listFunc   func(ctx context.Context) ([]api.WishlistEntry, error)
	addFunc    func(ctx context.Context, productID string) ([]api.WishlistEntry, error)
	removeFunc func(ctx context.Context, productID string) ([]api.WishlistEntry, error)
}

func (f *fakeWishlistAPI) Wishlist(ctx context.Context) ([]api.WishlistEntry, error) {
	if f.listFunc != nil {
		return f.listFunc(ctx)
	}
	return nil, nil
}

func (f *fakeWishlistAPI) WishlistAdd(ctx context.Context, productID string) ([]api.WishlistEntry, error) {
	if f.addFunc != nil {
		return f.addFunc(ctx, productID)
	}
	return nil, nil
}

func (f *fakeWishlistAPI) WishlistRemove(ctx context.Context, productID string) ([]api.WishlistEntry, error) {
	if f.removeFunc != nil {
		return f.removeFunc(ctx, productID)
	}
	return nil, nil
}

func signedIn(s *wishlist.Store) {
	s.HandleSessionChange(context.Background(), &api.User{ID: "u1", Role: api.RoleUser})
}

// ==================== TESTS ====================

func TestWishlistStore_SessionLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("success_login_loads_once", func(t *testing.T) {
		loads := 0
		s := wishlist.NewStore(&fakeWishlistAPI{
			listFunc: func(context.Context) ([]api.WishlistEntry, error) {
				loads++
				return []api.WishlistEntry{{ID: "w1", ProductID: "p1"}}, nil
			},
		}, nil)

		s.HandleSessionChange(ctx, &api.User{ID: "u1"})

		assert.Equal(t, 1, loads)
		assert.True(t, s.Contains("p1"))
	})

	t.Run("success_logout_empties_without_remote_call", func(t *testing.T) {
		calls := 0
		s := wishlist.NewStore(&fakeWishlistAPI{
			listFunc: func(context.Context) ([]api.WishlistEntry, error) {
				calls++
				return []api.WishlistEntry{{ID: "w1", ProductID: "p1"}}, nil
			},
		}, nil)
		s.HandleSessionChange(ctx, &api.User{ID: "u1"})
		assert.Equal(t, 1, calls)

		s.HandleSessionChange(ctx, nil)

		assert.Equal(t, 0, s.Len())
		assert.Equal(t, 1, calls, "logout must not hit the API")
	})

	t.Run("error_load_failure_leaves_empty_list", func(t *testing.T) {
		s := wishlist.NewStore(&fakeWishlistAPI{
			listFunc: func(context.Context) ([]api.WishlistEntry, error) {
				return nil, errors.New("boom")
			},
		}, nil)

		s.HandleSessionChange(ctx, &api.User{ID: "u1"})

		assert.Equal(t, 0, s.Len())
	})

	t.Run("error_mutation_requires_sign_in", func(t *testing.T) {
		s := wishlist.NewStore(&fakeWishlistAPI{}, nil)

		res := s.Add(ctx, "p1")

		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Message)
	})
}

func TestWishlistStore_Toggle(t *testing.T) {
	ctx := context.Background()

	t.Run("success_toggle_symmetry", func(t *testing.T) {
		adds, removes := 0, 0
		s := wishlist.NewStore(&fakeWishlistAPI{
			addFunc: func(_ context.Context, pid string) ([]api.WishlistEntry, error) {
				adds++
				return []api.WishlistEntry{{ID: "w1", ProductID: pid}}, nil
			},
			removeFunc: func(context.Context, string) ([]api.WishlistEntry, error) {
				removes++
				return []api.WishlistEntry{}, nil
			},
		}, nil)
		signedIn(s)

		res := s.Toggle(ctx, "p1")
		assert.True(t, res.Success)
		assert.True(t, s.Contains("p1"))
		assert.Equal(t, 1, adds)
		assert.Equal(t, 0, removes)

		res = s.Toggle(ctx, "p1")
		assert.True(t, res.Success)
		assert.False(t, s.Contains("p1"))
		assert.Equal(t, 1, adds)
		assert.Equal(t, 1, removes)
	})

	t.Run("success_bare_id_and_populated_object_same_identity", func(t *testing.T) {
		s := wishlist.NewStore(&fakeWishlistAPI{
			listFunc: func(context.Context) ([]api.WishlistEntry, error) {
				return []api.WishlistEntry{
					// populated object response
					{ID: "w1", ProductID: "p1", Product: &api.Product{ID: "p1", Name: "Mug"}},
					// bare id response
					{ID: "w2", ProductID: "p2"},
				}, nil
			},
		}, nil)
		signedIn(s)

		assert.True(t, s.Contains("p1"))
		assert.True(t, s.Contains("p2"))
		assert.False(t, s.Contains("p3"))
	})

	t.Run("error_server_rejection_message_surfaced", func(t *testing.T) {
		s := wishlist.NewStore(&fakeWishlistAPI{
			addFunc: func(context.Context, string) ([]api.WishlistEntry, error) {
				return nil, apperror.New(apperror.CodeConflict, "Product already in wishlist", http.StatusConflict)
			},
		}, nil)
		signedIn(s)

		res := s.Add(ctx, "p1")

		assert.False(t, res.Success)
		assert.Equal(t, "Product already in wishlist", res.Message)
	})
}

func TestWishlistStore_StaleResponseDiscarded(t *testing.T) {
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})

	s := wishlist.NewStore(&fakeWishlistAPI{
		addFunc: func(_ context.Context, pid string) ([]api.WishlistEntry, error) {
			close(started)
			<-release // the add response arrives after the remove response
			return []api.WishlistEntry{{ID: "w1", ProductID: pid}}, nil
		},
		removeFunc: func(context.Context, string) ([]api.WishlistEntry, error) {
			return []api.WishlistEntry{}, nil
		},
	}, nil)
	signedIn(s)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Add(ctx, "p1")
	}()
	<-started

	// A later request supersedes the in-flight add.
	res := s.Remove(ctx, "p1")
	assert.True(t, res.Success)

	close(release)
	<-done

	// The add's late response must not overwrite the remove's newer state.
	assert.False(t, s.Contains("p1"))
	assert.Equal(t, 0, s.Len())
}
