package model

// AuthClaims is the subset of the auth service's access token this service relies on.
type AuthClaims struct {
	UserID      string `json:"sub"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

func (c *AuthClaims) Actor() Actor {
	name := c.DisplayName
	if name == "" {
		name = c.Email
	}
	return Actor{DisplayName: name, Email: c.Email}
}
