package app

import (
	"github.com/charlesng35/peerfeed/internal/auth"
	"github.com/charlesng35/peerfeed/internal/services"
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}

// IdentityPolicy decides which user acts for requests that do not name one.
func (c FeatureConfig) IdentityPolicy() services.IdentityPolicy {
	return services.IdentityPolicy{
		PlaceholderUserID: c.PlaceholderUserID,
		RequireIdentity:   c.RequireIdentity,
	}
}
