package auth

import "quill/internal/domain/models"

// JWTVerifier validates bearer tokens. The abstraction keeps the middleware
// agnostic to where the signing keys come from.
type JWTVerifier interface {
	// VerifyToken validates a JWT and returns its parsed claims. Returns an
	// error if the token is invalid, expired, or wrongly signed.
	VerifyToken(tokenString string) (*models.AccessClaims, error)

	// Close releases any resources held by the verifier
	Close() error
}
