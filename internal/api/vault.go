package api

import (
	"context"
	"errors"
	"strings"

	"github.com/yndnr/sessionkit-go/internal/core/domain"
	"github.com/yndnr/sessionkit-go/internal/core/vault"
	"github.com/yndnr/sessionkit-go/internal/transport"
)

// Password is a stored credential of the vault.
type Password struct {
	ID       string `json:"_id,omitempty"`
	AppName  string `json:"appName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Todo is a vault todo item.
type Todo struct {
	ID          string `json:"_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// VaultClient calls the vault resource endpoints.
type VaultClient struct {
	client *transport.Client
}

// NewVaultClient creates a VaultClient.
func NewVaultClient(c *transport.Client) *VaultClient {
	return &VaultClient{client: c}
}

// ListPasswords returns every stored password.
func (v *VaultClient) ListPasswords(ctx context.Context) ([]Password, error) {
	var resp struct {
		Passwords []Password `json:"passwords"`
	}
	if err := v.client.Get(ctx, "/allpassword", &resp); err != nil {
		return nil, err
	}
	return resp.Passwords, nil
}

// AddPassword stores a new password.
func (v *VaultClient) AddPassword(ctx context.Context, p Password) error {
	if strings.TrimSpace(p.AppName) == "" || p.Password == "" {
		return domain.ErrMissingArgument.WithDetails("app name and password are required")
	}
	return v.client.Post(ctx, "/addnewpassword", Password{
		AppName:  p.AppName,
		Username: p.Username,
		Password: p.Password,
	}, nil)
}

// Audit scores the stored passwords.
func (v *VaultClient) Audit(ctx context.Context) (vault.Report, error) {
	passwords, err := v.ListPasswords(ctx)
	if err != nil {
		return vault.Report{}, err
	}
	secrets := make([]string, len(passwords))
	for i, p := range passwords {
		secrets[i] = p.Password
	}
	return vault.Score(secrets), nil
}

// ListTodos returns the todos. The server answers 404 when there are none.
func (v *VaultClient) ListTodos(ctx context.Context) ([]Todo, error) {
	var resp struct {
		Todos []Todo `json:"fetchingalltodo"`
	}
	err := v.client.Get(ctx, "/todos/view", &resp)
	if errors.Is(err, domain.ErrNotFound) {
		return []Todo{}, nil
	}
	if err != nil {
		return nil, err
	}
	return resp.Todos, nil
}

// AddTodo creates a todo and returns the server's confirmation message.
func (v *VaultClient) AddTodo(ctx context.Context, title, description string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", domain.ErrMissingArgument.WithDetails("title is required")
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := v.client.Post(ctx, "/todos/add", Todo{Title: title, Description: description}, &resp); err != nil {
		return "", err
	}
	if resp.Message == "" {
		resp.Message = "Todo created successfully"
	}
	return resp.Message, nil
}
