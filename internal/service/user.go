package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/droneshop/internal/events"
	"github.com/Skotchmaster/droneshop/internal/logging"
	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
	"github.com/Skotchmaster/droneshop/internal/transport"
)

type UserStore interface {
	store.Users
	store.Accounts
	store.Carts
	store.Wishlists
}

type UserService struct {
	Store  UserStore
	Events events.Publisher
	Now    Clock
}

// CreateProfile stores a new profile. Profiles created here always start as
// regular users.
func (s *UserService) CreateProfile(ctx context.Context, u *models.User) (string, error) {
	now := s.Now.now()
	u.ID = ""
	u.Role = models.RoleUser
	u.Active = nil
	u.CreatedAt, u.UpdatedAt = now, now
	if err := s.Store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return "", wrap(ErrConflict, "User info already exists")
		}
		return "", storeErr(err, "User")
	}
	return u.ID, nil
}

// UpsertProfile updates the non-empty profile fields, creating the profile
// when it does not exist. Role and active state are never changed here.
func (s *UserService) UpsertProfile(ctx context.Context, u *models.User) error {
	now := s.Now.now()
	u.ID = ""
	u.Role = models.RoleUser
	u.Active = nil
	u.CreatedAt, u.UpdatedAt = now, now
	return storeErr(s.Store.UpsertUser(ctx, u), "User")
}

func (s *UserService) Get(ctx context.Context, email string) (*models.User, error) {
	u, err := s.Store.GetUserByEmail(ctx, email)
	return u, storeErr(err, "User")
}

func (s *UserService) CheckAdmin(ctx context.Context, email string) (*transport.CheckAdminResponse, error) {
	u, err := s.Store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &transport.CheckAdminResponse{IsAdmin: false}, nil
		}
		return nil, storeErr(err, "User")
	}
	return &transport.CheckAdminResponse{
		IsAdmin: u.IsAdmin(),
		User:    &transport.AdminUser{Email: u.Email, Name: u.Name, Role: u.Role},
	}, nil
}

func (s *UserService) MakeAdmin(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "user.make_admin")

	if err := s.Store.SetUserRole(ctx, email, models.RoleAdmin); err != nil {
		return storeErr(err, "User")
	}
	publish(ctx, s.Events, events.TopicUsers, email, events.UserEvent{Type: "role_changed", Email: email, Role: models.RoleAdmin})
	l.Info("make_admin_success")
	return nil
}

func (s *UserService) List(ctx context.Context, f store.UserFilter) ([]transport.UserSummary, error) {
	users, err := s.Store.ListUsers(ctx, f)
	if err != nil {
		return nil, storeErr(err, "User")
	}
	out := make([]transport.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, transport.NewUserSummary(u))
	}
	return out, nil
}

func (s *UserService) SetActive(ctx context.Context, email string, active bool) error {
	if err := s.Store.SetUserActive(ctx, email, active); err != nil {
		return storeErr(err, "User")
	}
	kind := "deactivated"
	if active {
		kind = "activated"
	}
	publish(ctx, s.Events, events.TopicUsers, email, events.UserEvent{Type: kind, Email: email})
	return nil
}

// Delete removes the profile, the credentials, the cart and the wishlist of
// email. It fails with ErrNotFound when neither a profile nor credentials exist.
func (s *UserService) Delete(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "user.delete")

	email = strings.TrimSpace(email)
	if email == "" {
		return wrap(ErrValidation, "Email is required")
	}

	authDeleted, err := s.Store.DeleteAuth(ctx, email)
	if err != nil {
		return storeErr(err, "User")
	}
	userDeleted, err := s.Store.DeleteUser(ctx, email)
	if err != nil {
		return storeErr(err, "User")
	}
	if !authDeleted && !userDeleted {
		return wrap(ErrNotFound, "User not found")
	}
	if err := s.Store.DeleteCart(ctx, email); err != nil {
		l.Warn("delete_cart_failed", "error", err)
	}
	if err := s.Store.DeleteWishlist(ctx, email); err != nil {
		l.Warn("delete_wishlist_failed", "error", err)
	}

	publish(ctx, s.Events, events.TopicUsers, email, events.UserEvent{Type: "deleted", Email: email})
	l.Info("delete_user_success")
	return nil
}
