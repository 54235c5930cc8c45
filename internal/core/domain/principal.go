package domain

// Attribute keys used in Principal.Attributes.
const (
	AttrUsername     = "username"
	AttrFullName     = "fullName"
	AttrAgentName    = "agentName"
	AttrMatricNumber = "matricNumber"
	AttrRoomNumber   = "roomNumber"
	AttrResidence    = "residence"
	AttrPhoneNumber  = "phoneNumber"
)

// Principal is the authenticated identity as reported by the server's profile endpoint.
type Principal struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"display_name"`
	Email       string            `json:"email"`
	Role        string            `json:"role,omitempty"`
	Verified    bool              `json:"verified"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Attr returns the named attribute or "".
func (p *Principal) Attr(key string) string {
	if p == nil || p.Attributes == nil {
		return ""
	}
	return p.Attributes[key]
}

// Clone returns a deep copy of p.
func (p *Principal) Clone() *Principal {
	if p == nil {
		return nil
	}
	c := *p
	if p.Attributes != nil {
		c.Attributes = make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			c.Attributes[k] = v
		}
	}
	return &c
}
