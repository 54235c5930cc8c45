package handler

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUserExists is returned when an email is registered twice.
	ErrUserExists = errors.New("user already exists")

	// ErrBadCredentials is returned for an unknown email or a wrong password.
	ErrBadCredentials = errors.New("invalid email or password")
)

// User is a registered account of the mock.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	// Fields holds the registration form minus the password.
	Fields    map[string]string
	HasPaid   bool
	Passwords []PasswordRecord
	Todos     []TodoRecord
}

func (u *User) clone() User {
	c := *u
	c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	c.Fields = make(map[string]string, len(u.Fields))
	for k, v := range u.Fields {
		c.Fields[k] = v
	}
	c.Passwords = append([]PasswordRecord(nil), u.Passwords...)
	c.Todos = append([]TodoRecord(nil), u.Todos...)
	return c
}

// Directory is the in-memory account store.
type Directory struct {
	cost int

	mu      sync.RWMutex
	byEmail map[string]*User
	byID    map[string]*User
}

// NewDirectory creates an empty directory hashing passwords at cost.
func NewDirectory(cost int) *Directory {
	return &Directory{
		cost:    cost,
		byEmail: make(map[string]*User),
		byID:    make(map[string]*User),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create registers a new account.
func (d *Directory) Create(email, password string, fields map[string]string) (User, error) {
	email = normalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return User{}, err
	}

	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Fields:       make(map[string]string, len(fields)),
	}
	for k, v := range fields {
		u.Fields[k] = v
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byEmail[email]; ok {
		return User{}, ErrUserExists
	}
	d.byEmail[email] = u
	d.byID[u.ID] = u
	return u.clone(), nil
}

// Authenticate checks a password and returns the account.
func (d *Directory) Authenticate(email, password string) (User, error) {
	d.mu.RLock()
	u, ok := d.byEmail[normalizeEmail(email)]
	var snapshot User
	if ok {
		snapshot = u.clone()
	}
	d.mu.RUnlock()

	if !ok {
		return User{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(snapshot.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrBadCredentials
	}
	return snapshot, nil
}

// Get returns a copy of the account with the given ID.
func (d *Directory) Get(id string) (User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.byID[id]
	if !ok {
		return User{}, false
	}
	return u.clone(), true
}

// Update applies fn to the account under the write lock.
func (d *Directory) Update(id string, fn func(*User)) (User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.byID[id]
	if !ok {
		return User{}, false
	}
	fn(u)
	return u.clone(), true
}
