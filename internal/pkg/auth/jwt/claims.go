package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims handed to a browser profile.
// The token only proves which preference store namespace the caller owns;
// sign-in state lives in the store itself, not in the token.
type Payload struct {
	// StandardClaims embeds Exp (Expiration), Iat (Issued At) and Iss (Issuer).
	jwt.StandardClaims `json:"standard_claims"`

	// ProfileID is the namespace of the caller's preference store, e.g. "prf_3fZk0QmL9aBc".
	ProfileID string `json:"profile_id"`
}
