package auth

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/yndnr/sessionkit-go/internal/core/domain"
)

// ProfileEndpoint fetches and decodes the authenticated principal.
type ProfileEndpoint interface {
	Path() string
	Decode(body []byte) (*domain.Principal, error)
}

// ProfileFor returns the profile decoder for a product profile, fetched from path.
func ProfileFor(profile, path string) (ProfileEndpoint, error) {
	switch profile {
	case ProfileVault, "":
		return VaultProfile{path: path}, nil
	case ProfileMarket:
		return MarketProfile{path: path}, nil
	default:
		return nil, domain.ErrInvalidConfig.WithDetails(fmt.Sprintf("unknown profile %q", profile))
	}
}

// VaultProfile reads a user object that is the whole response body.
type VaultProfile struct {
	path string
}

// NewVaultProfile creates a VaultProfile fetched from path.
func NewVaultProfile(path string) VaultProfile {
	return VaultProfile{path: path}
}

// Path implements ProfileEndpoint.
func (p VaultProfile) Path() string { return p.path }

// Decode implements ProfileEndpoint.
func (p VaultProfile) Decode(body []byte) (*domain.Principal, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, domain.ErrServer.WithDetails("decode profile").WithCause(err)
	}
	// Some deployments wrap the user in a "user" object.
	if inner, ok := raw["user"].(map[string]any); ok {
		raw = inner
	}
	return principalFrom(raw)
}

// MarketProfile reads the first element of the "userinfo" array.
type MarketProfile struct {
	path string
}

// NewMarketProfile creates a MarketProfile fetched from path.
func NewMarketProfile(path string) MarketProfile {
	return MarketProfile{path: path}
}

// Path implements ProfileEndpoint.
func (p MarketProfile) Path() string { return p.path }

// Decode implements ProfileEndpoint.
func (p MarketProfile) Decode(body []byte) (*domain.Principal, error) {
	var resp struct {
		UserInfo []map[string]any `json:"userinfo"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.ErrServer.WithDetails("decode profile").WithCause(err)
	}
	if len(resp.UserInfo) == 0 {
		return nil, domain.ErrServer.WithDetails("profile response has no userinfo")
	}
	return principalFrom(resp.UserInfo[0])
}

var attributeKeys = []string{
	domain.AttrUsername,
	domain.AttrFullName,
	domain.AttrAgentName,
	domain.AttrMatricNumber,
	domain.AttrRoomNumber,
	domain.AttrResidence,
	domain.AttrPhoneNumber,
}

func principalFrom(raw map[string]any) (*domain.Principal, error) {
	p := &domain.Principal{
		ID:       firstString(raw, "id", "_id"),
		Email:    firstString(raw, "email"),
		Role:     firstString(raw, "role"),
		Verified: boolField(raw, "hasPaid") || boolField(raw, "verified"),
	}
	p.DisplayName = firstString(raw, "name", "username", "agentName", "fullName")
	if p.DisplayName == "" {
		p.DisplayName = p.Email
	}

	for _, key := range attributeKeys {
		if v := firstString(raw, key); v != "" {
			if p.Attributes == nil {
				p.Attributes = make(map[string]string)
			}
			p.Attributes[key] = v
		}
	}

	if p.ID == "" && p.Email == "" && p.DisplayName == "" {
		return nil, domain.ErrServer.WithDetails("profile response has no identity fields")
	}
	return p, nil
}

// firstString returns the first key present as a string or number.
func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func boolField(raw map[string]any, key string) bool {
	b, _ := raw[key].(bool)
	return b
}
