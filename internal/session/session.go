// Package session resolves logins against the built-in accounts and the
// employee records, and holds the active user of the terminal.
package session

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go-pos-local/internal/models"
	"go-pos-local/internal/repository"
	"go-pos-local/internal/store"
)

var (
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotLoggedIn        = errors.New("no user is logged in")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrPasswordTooShort   = errors.New("new password must be at least 6 characters long")
	ErrPasswordMismatch   = errors.New("new passwords do not match")
)

const MinPasswordLength = 6

const (
	AdminEmail    = "admin@pos.com"
	EmployeeEmail = "employee@pos.com"
)

type account struct {
	user     models.User
	password string
}

var builtinAccounts = []account{
	{
		user:     models.User{ID: "1", Email: AdminEmail, Name: "Admin User", Role: models.RoleAdmin},
		password: "admin123",
	},
	{
		user:     models.User{ID: "2", Email: EmployeeEmail, Name: "Employee User", Role: models.RoleEmployee},
		password: "emp123",
	},
}

// EmployeeDirectory finds stored employees by email.
type EmployeeDirectory interface {
	FindByEmail(email string) (models.User, bool)
}

type adminSecret struct {
	Password string `json:"password" validate:"required"`
}

type Provider struct {
	store     *store.Store
	employees EmployeeDirectory
	verifier  CredentialVerifier
	now       func() time.Time
	current   *models.User
}

func New(s *store.Store, employees EmployeeDirectory, verifier CredentialVerifier) *Provider {
	if verifier == nil {
		verifier = PlaintextVerifier{}
	}
	return &Provider{store: s, employees: employees, verifier: verifier, now: time.Now}
}

// IsBuiltinEmail reports whether email belongs to a built-in account. Such
// accounts always win over stored employees at login.
func IsBuiltinEmail(email string) bool {
	_, ok := findBuiltin(email)
	return ok
}

func findBuiltin(email string) (account, bool) {
	email = strings.TrimSpace(email)
	for _, a := range builtinAccounts {
		if strings.EqualFold(a.user.Email, email) {
			return a, true
		}
	}
	return account{}, false
}

// Login checks the built-in accounts first, then the stored employees, and
// makes the matching user the active session.
func (p *Provider) Login(email, password string) (models.User, error) {
	user, ok := p.authenticate(email, password)
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	user = user.Public()
	p.current = &user
	if err := p.store.PutObject(repository.KeyCurrentUser, user); err != nil {
		log.Printf("⚠️ Session for %s is not persisted: %v", user.Email, err)
	}
	return user, nil
}

func (p *Provider) authenticate(email, password string) (models.User, bool) {
	if a, ok := findBuiltin(email); ok {
		stored := a.password
		if a.user.Email == AdminEmail {
			stored = p.adminPassword()
		}
		user := a.user
		user.CreatedAt = p.now().UTC()
		return user, p.verifier.Verify(stored, password)
	}
	if p.employees == nil {
		return models.User{}, false
	}
	user, ok := p.employees.FindByEmail(email)
	if !ok {
		return models.User{}, false
	}
	return user, p.verifier.Verify(user.Password, password)
}

func (p *Provider) adminPassword() string {
	var secret adminSecret
	if p.store.GetObject(repository.KeyAdminPassword, &secret) {
		return secret.Password
	}
	return builtinAccounts[0].password
}

// Restore reloads the persisted session, if any.
func (p *Provider) Restore() (models.User, bool) {
	var user models.User
	if !p.store.GetObject(repository.KeyCurrentUser, &user) {
		p.current = nil
		return models.User{}, false
	}
	user = user.Public()
	p.current = &user
	return user, true
}

func (p *Provider) Current() (models.User, bool) {
	if p.current == nil {
		return models.User{}, false
	}
	return *p.current, true
}

// Logout ends the session and forgets the persisted marker.
func (p *Provider) Logout() error {
	p.current = nil
	return p.store.RemoveKey(repository.KeyCurrentUser)
}

// ChangeAdminPassword replaces the built-in admin password after checking the
// current one.
func (p *Provider) ChangeAdminPassword(current, next, confirm string) error {
	if !p.verifier.Verify(p.adminPassword(), current) {
		return ErrWrongPassword
	}
	if len(next) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if next != confirm {
		return ErrPasswordMismatch
	}
	hashed, err := p.verifier.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return p.store.PutObject(repository.KeyAdminPassword, adminSecret{Password: hashed})
}
