package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go-pos-local/internal/models"
	"go-pos-local/internal/store"
)

var ErrDuplicateEmail = errors.New("email already in use")

type Employees struct {
	repo   *Repositories
	c      *store.Collection[models.User]
	hasher PasswordHasher
}

type EmployeeInput struct {
	Email          string      `json:"email" binding:"required"`
	Name           string      `json:"name" binding:"required"`
	Role           models.Role `json:"role"`
	ProfilePicture string      `json:"profile_picture"`
	Password       string      `json:"password"`
}

func (e *Employees) List() []models.User {
	return newestFirst(e.c.Load(), func(u models.User) time.Time { return u.CreatedAt })
}

func (e *Employees) Get(id string) (models.User, bool) {
	return e.c.Find(func(u models.User) bool { return u.ID == id })
}

func (e *Employees) FindByEmail(email string) (models.User, bool) {
	email = strings.TrimSpace(email)
	return e.c.Find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (e *Employees) Create(in EmployeeInput) (models.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || strings.TrimSpace(in.Name) == "" {
		return models.User{}, fmt.Errorf("%w: email and name are required", ErrInvalid)
	}
	if in.Password == "" {
		return models.User{}, fmt.Errorf("%w: password is required", ErrInvalid)
	}
	if _, taken := e.FindByEmail(email); taken {
		return models.User{}, ErrDuplicateEmail
	}
	role := in.Role
	if role == "" {
		role = models.RoleEmployee
	}
	hashed, err := e.hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	id, now := e.repo.stamp()
	user := models.User{
		ID:             id,
		Email:          email,
		Name:           strings.TrimSpace(in.Name),
		Role:           role,
		ProfilePicture: in.ProfilePicture,
		Password:       hashed,
		CreatedAt:      now,
	}
	if err := e.c.Append(user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Update replaces the editable fields. An empty password keeps the current one.
func (e *Employees) Update(id string, in EmployeeInput) (models.User, error) {
	current, ok := e.Get(id)
	if !ok {
		return models.User{}, ErrNotFound
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		email = current.Email
	}
	if other, taken := e.FindByEmail(email); taken && other.ID != id {
		return models.User{}, ErrDuplicateEmail
	}

	fields := map[string]any{"email": email}
	if name := strings.TrimSpace(in.Name); name != "" {
		fields["name"] = name
	}
	if in.Role != "" {
		fields["role"] = in.Role
	}
	if in.ProfilePicture != "" {
		fields["profile_picture"] = in.ProfilePicture
	}
	if in.Password != "" {
		hashed, err := e.hasher.Hash(in.Password)
		if err != nil {
			return models.User{}, fmt.Errorf("hash password: %w", err)
		}
		fields["password"] = hashed
	}

	updated := e.c.Update(id, fields)
	if updated == nil {
		return models.User{}, fmt.Errorf("%w: employee could not be saved", ErrInvalid)
	}
	return *updated, nil
}

func (e *Employees) Delete(id string) {
	e.c.Delete(id)
}
