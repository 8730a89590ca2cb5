package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
	"golang.org/x/crypto/bcrypt"
)

// Credential seeds one account.
type Credential struct {
	ID       string
	Username string
	Password string
	Role     models.Role
}

// DefaultCredentials are the dashboard accounts shipped with the server.
var DefaultCredentials = []Credential{
	{ID: "1", Username: "admin", Password: "admin123", Role: models.RoleAdmin},
	{ID: "2", Username: "operator", Password: "op123", Role: models.RoleOperator},
}

// Directory is an in-memory user store with bcrypt password hashes.
type Directory struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewDirectory hashes the given credentials with cost and returns a directory
// holding them.
func NewDirectory(cost int, creds ...Credential) (*Directory, error) {
	d := &Directory{users: make(map[string]*models.User, len(creds))}
	for _, c := range creds {
		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", c.Username, err)
		}
		d.users[c.Username] = &models.User{ID: c.ID, Username: c.Username, Role: c.Role, PasswordHash: hash}
	}
	return d, nil
}

// Authenticate checks username and password. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (d *Directory) Authenticate(ctx context.Context, username string, password []byte) (*models.User, error) {
	d.mu.RLock()
	u, ok := d.users[username]
	d.mu.RUnlock()
	if !ok {
		return nil, common.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, password); err != nil {
		return nil, common.ErrUnauthorized
	}
	return &models.User{ID: u.ID, Username: u.Username, Role: u.Role}, nil
}
