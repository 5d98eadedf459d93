package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

func TestUser_ProfileLifecycle(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &UserService{Store: st, Events: &fakePublisher{}}
	ctx := context.Background()

	id, err := svc.CreateProfile(ctx, &models.User{Email: "a@x.com", Name: "Ann", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	u, err := svc.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role, "role cannot be chosen by the client")

	_, err = svc.CreateProfile(ctx, &models.User{Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, svc.UpsertProfile(ctx, &models.User{Email: "a@x.com", Phone: "017"}))
	require.NoError(t, svc.UpsertProfile(ctx, &models.User{Email: "new@x.com", Name: "New"}))
	u, err = svc.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, "017", u.Phone)

	_, err = svc.Get(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUser_AdminRole(t *testing.T) {
	t.Parallel()

	svc := &UserService{Store: newTestStore(t)}
	ctx := context.Background()

	res, err := svc.CheckAdmin(ctx, "ghost@x.com")
	require.NoError(t, err)
	assert.False(t, res.IsAdmin)
	assert.Nil(t, res.User)

	_, err = svc.CreateProfile(ctx, &models.User{Email: "a@x.com", Name: "Ann"})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.MakeAdmin(ctx, "ghost@x.com"), ErrNotFound)
	require.NoError(t, svc.MakeAdmin(ctx, "a@x.com"))

	res, err = svc.CheckAdmin(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, res.IsAdmin)
	require.NotNil(t, res.User)
	assert.Equal(t, "admin", res.User.Role)
}

func TestUser_ListAndStatus(t *testing.T) {
	t.Parallel()

	svc := &UserService{Store: newTestStore(t)}
	ctx := context.Background()

	for _, e := range []string{"a@x.com", "b@x.com"} {
		_, err := svc.CreateProfile(ctx, &models.User{Email: e})
		require.NoError(t, err)
	}
	require.NoError(t, svc.SetActive(ctx, "b@x.com", false))
	assert.ErrorIs(t, svc.SetActive(ctx, "ghost@x.com", true), ErrNotFound)

	all, err := svc.List(ctx, store.UserFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, u := range all {
		assert.Equal(t, u.Email == "a@x.com", u.Active)
		assert.Equal(t, "user", u.Role)
	}

	active, err := svc.List(ctx, store.UserFilter{Active: models.BoolPtr(true)})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "a@x.com", active[0].Email)
}

func TestUser_DeleteCascades(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &UserService{Store: st}
	ctx := context.Background()

	require.NoError(t, st.CreateAuth(ctx, &models.Auth{Email: "a@x.com", PasswordHash: "h"}))
	_, err := svc.CreateProfile(ctx, &models.User{Email: "a@x.com"})
	require.NoError(t, err)
	_, err = st.AddCartItem(ctx, "a@x.com", models.CartItem{ProductID: "p1", Price: 1, Quantity: 1})
	require.NoError(t, err)
	_, err = st.AddWishlistItem(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "a@x.com"))

	_, err = st.GetAuthByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.GetUserByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.GetCart(ctx, "a@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.GetWishlist(ctx, "a@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "a@x.com"), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, " "), ErrValidation)
}
