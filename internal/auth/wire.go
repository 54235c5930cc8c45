package auth

import (
	"fmt"

	"github.com/yndnr/sessionkit-go/internal/core/domain"
	"github.com/yndnr/sessionkit-go/internal/transport"
)

// AccessTokenField is the JSON field that carries the access token in login
// and refresh responses. The server spells it this way.
const AccessTokenField = "acesstoken"

// Product profiles.
const (
	ProfileVault  = "vault"
	ProfileMarket = "market"
)

// Endpoints are the server paths used by the session lifecycle.
type Endpoints struct {
	Login    string `koanf:"login" yaml:"login"`
	Register string `koanf:"register" yaml:"register"`
	Refresh  string `koanf:"refresh" yaml:"refresh"`
	Profile  string `koanf:"profile" yaml:"profile"`
	// Logout is optional; when empty, logout is local only.
	Logout string `koanf:"logout" yaml:"logout,omitempty"`
	// LoginRoute is where the user is sent after a forced logout.
	LoginRoute string `koanf:"login_route" yaml:"login_route"`
}

// VaultEndpoints returns the endpoints of the password/todo vault API.
func VaultEndpoints() Endpoints {
	return Endpoints{
		Login:      "/login",
		Register:   "/register",
		Refresh:    "/refresh",
		Profile:    "/dashboard",
		LoginRoute: "/login",
	}
}

// MarketEndpoints returns the endpoints of the campus marketplace API.
func MarketEndpoints() Endpoints {
	return Endpoints{
		Login:      "/login",
		Register:   "/register",
		Refresh:    "/refresh-token",
		Profile:    "/agent",
		LoginRoute: "/login",
	}
}

// EndpointsFor returns the default endpoints of a product profile.
func EndpointsFor(profile string) (Endpoints, error) {
	switch profile {
	case ProfileVault, "":
		return VaultEndpoints(), nil
	case ProfileMarket:
		return MarketEndpoints(), nil
	default:
		return Endpoints{}, domain.ErrInvalidConfig.WithDetails(fmt.Sprintf("unknown profile %q", profile))
	}
}

// Merge returns e with the non-empty fields of override applied.
func (e Endpoints) Merge(override Endpoints) Endpoints {
	if override.Login != "" {
		e.Login = override.Login
	}
	if override.Register != "" {
		e.Register = override.Register
	}
	if override.Refresh != "" {
		e.Refresh = override.Refresh
	}
	if override.Profile != "" {
		e.Profile = override.Profile
	}
	if override.Logout != "" {
		e.Logout = override.Logout
	}
	if override.LoginRoute != "" {
		e.LoginRoute = override.LoginRoute
	}
	return e
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenFromResponse extracts the access token from a login or refresh response.
func TokenFromResponse(resp *transport.Response) (string, error) {
	var body map[string]any
	if err := resp.Decode(&body); err != nil {
		return "", err
	}
	token, _ := body[AccessTokenField].(string)
	if token == "" {
		return "", domain.ErrServer.
			WithStatus(resp.StatusCode).
			WithDetails("response has no " + AccessTokenField + " field")
	}
	return token, nil
}
