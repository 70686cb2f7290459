// Package auth verifies bearer tokens issued by the external identity
// service and exposes the decoded user to request handlers.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// User is the identity decoded from a bearer token. The token is trusted
// as-is; issuance and revocation belong to the identity service.
type User struct {
	ID   int64  `json:"id_usuario"`
	Name string `json:"usuario"`
	Role string `json:"nombre_rol"`
}

// Claims is the HS256 token payload.
type Claims struct {
	UserID    int64  `json:"id_usuario"`
	Usuario   string `json:"usuario"`
	NombreRol string `json:"nombre_rol"`
	Exp       int64  `json:"exp,omitempty"`
}

var (
	// ErrTokenMissing indicates no bearer token was supplied.
	ErrTokenMissing = errors.New("auth: token missing")
	// ErrTokenInvalid indicates a malformed, tampered or expired token.
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// Verifier checks HS256 compact tokens against the shared signing secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier constructs a Verifier.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

type tokenHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// Parse verifies the token signature and expiry and returns the user.
func (v *Verifier) Parse(token string) (*User, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrTokenInvalid
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrTokenInvalid
	}
	var header tokenHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, ErrTokenInvalid
	}
	if header.Alg != "HS256" {
		return nil, fmt.Errorf("%w: unsupported alg %q", ErrTokenInvalid, header.Alg)
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if !hmac.Equal(sig, v.sign(parts[0]+"."+parts[1])) {
		return nil, ErrTokenInvalid
	}

	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrTokenInvalid
	}
	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, ErrTokenInvalid
	}
	if claims.Exp != 0 && v.now().Unix() >= claims.Exp {
		return nil, ErrTokenInvalid
	}

	return &User{ID: claims.UserID, Name: claims.Usuario, Role: claims.NombreRol}, nil
}

// Sign produces a compact HS256 token for the given claims. Used by tests
// and local tooling; production tokens come from the identity service.
func (v *Verifier) Sign(claims Claims) (string, error) {
	headerJSON, err := json.Marshal(tokenHeader{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", err
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	signing := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(claimsJSON)
	return signing + "." + base64.RawURLEncoding.EncodeToString(v.sign(signing)), nil
}

func (v *Verifier) sign(data string) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

// FromAuthorizationHeader extracts the bearer token from an Authorization
// header value.
func FromAuthorizationHeader(header string) (string, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", ErrTokenMissing
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return "", ErrTokenMissing
	}
	return token, nil
}
