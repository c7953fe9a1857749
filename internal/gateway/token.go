package gateway

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/minbarcms/minbar/internal/common"
	"github.com/minbarcms/minbar/internal/models"
)

// accessClaims is the subset of the backend's JWT payload the client
// cares about: subject (user id), email, optional profile metadata and
// expiry.
type accessClaims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	jwt.RegisteredClaims
}

// decodeAccessToken extracts identity and expiry from the backend's
// access token. The signature is not verified: the key lives server-side
// and the client only ever decodes tokens the backend itself issued.
func decodeAccessToken(token string) (models.User, time.Time, error) {
	var claims accessClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return models.User{}, time.Time{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	user := models.User{
		ID:    claims.Subject,
		Email: claims.Email,
	}
	if name, ok := claims.UserMetadata["display_name"].(string); ok {
		user.DisplayName = name
	}

	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	return user, expires, nil
}
