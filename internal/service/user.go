package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type UserService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
}

// profileUpdate is the ordered column list with its parameter list.
type profileUpdate struct {
	Columns []string
	Values  []any
}

func (u *profileUpdate) set(column string, value any) {
	u.Columns = append(u.Columns, column)
	u.Values = append(u.Values, value)
}

func (u profileUpdate) changes() map[string]any {
	m := make(map[string]any, len(u.Columns))
	for i, c := range u.Columns {
		m[c] = u.Values[i]
	}
	return m
}

// buildProfileUpdate turns the optional fields of req into the columns to write,
// in name, email, password order. The password is stored hashed; an empty set is
// a validation error.
func buildProfileUpdate(req transport.UpdateUserRequest, hashPassword func(string) (string, error)) (profileUpdate, error) {
	var u profileUpdate

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return profileUpdate{}, fmt.Errorf("name must not be empty: %w", ErrValidation)
		}
		u.set("name", name)
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" {
			return profileUpdate{}, fmt.Errorf("email must not be empty: %w", ErrValidation)
		}
		u.set("email", email)
	}
	if req.Password != nil {
		if *req.Password == "" {
			return profileUpdate{}, fmt.Errorf("password must not be empty: %w", ErrValidation)
		}
		h, err := hashPassword(*req.Password)
		if err != nil {
			return profileUpdate{}, fmt.Errorf("hash password: %w", err)
		}
		u.set("password_hash", h)
	}

	if len(u.Columns) == 0 {
		return profileUpdate{}, fmt.Errorf("no fields to update: %w", ErrValidation)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, caller Caller) ([]models.User, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.Repo.ListUsers(ctx)
}

func (s *UserService) Get(ctx context.Context, caller Caller, id uint) (*models.User, error) {
	if !caller.CanAccess(id) {
		return nil, ErrForbidden
	}
	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, caller Caller, id uint, req transport.UpdateUserRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.update", "user_id", id)

	if !caller.CanAccess(id) {
		return nil, ErrForbidden
	}

	update, err := buildProfileUpdate(req, hash.HashPassword)
	if err != nil {
		return nil, err
	}

	user, err := s.Repo.UpdateUser(ctx, id, update.changes())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	publish(ctx, s.Events, l, mykafka.TopicUserEvents, strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":   "user_updated",
		"userID": id,
		"fields": update.Columns,
	})
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, caller Caller, id uint) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.delete", "user_id", id)

	if !caller.CanAccess(id) {
		return nil, ErrForbidden
	}

	user, err := s.Repo.DeleteUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("delete user: %w", err)
	}

	publish(ctx, s.Events, l, mykafka.TopicUserEvents, strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":   "user_deleted",
		"userID": id,
	})
	return user, nil
}
