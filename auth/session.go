package auth

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oesukam/r-incident-query-webapp/core"
	"github.com/oesukam/r-incident-query-webapp/pkg/crypto"
)

// SessionCodec creates and validates self-contained signed session tokens.
//
// Token format: base64(payloadJSON + "." + hexHMAC-SHA256(payloadJSON)).
// The payload is {"username":..., "expiresAt": <unix millis>}. Validation
// never panics or returns transport-level errors; anything malformed is
// simply an invalid session.
type SessionCodec struct {
	secret string
	maxAge time.Duration

	// now is swappable for tests.
	now func() time.Time
}

func NewSessionCodec(secret string, maxAge time.Duration) *SessionCodec {
	return &SessionCodec{
		secret: secret,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Create signs a new session token for username.
func (c *SessionCodec) Create(username string) (string, error) {
	if c.secret == "" {
		return "", core.ErrSecretRequired
	}

	claims := core.SessionClaims{
		Username:  username,
		ExpiresAt: c.now().Add(c.maxAge).UnixMilli(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	signature := crypto.SignPayload(payload, c.secret)
	token := base64.StdEncoding.EncodeToString(append(append(payload, '.'), signature...))

	logrus.WithFields(logrus.Fields{
		"username":  username,
		"expiresAt": time.UnixMilli(claims.ExpiresAt).Format(time.RFC3339),
	}).Info("Session created")

	return token, nil
}

// Claims validates token and returns its payload. Every failure mode maps to
// core.ErrInvalidSession.
func (c *SessionCodec) Claims(token string) (*core.SessionClaims, error) {
	if token == "" {
		return nil, core.ErrInvalidSession
	}

	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, core.ErrInvalidSession
	}

	// The payload is JSON and may itself contain dots; the hex signature
	// never does, so the separator is the last dot.
	idx := bytes.LastIndexByte(decoded, '.')
	if idx <= 0 || idx == len(decoded)-1 {
		return nil, core.ErrInvalidSession
	}
	payload, signature := decoded[:idx], string(decoded[idx+1:])

	if !crypto.VerifySignature(payload, signature, c.secret) {
		logrus.Warn("Invalid session token signature")
		return nil, core.ErrInvalidSession
	}

	var claims core.SessionClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, core.ErrInvalidSession
	}

	if c.now().UnixMilli() > claims.ExpiresAt {
		logrus.WithField("username", claims.Username).Info("Session expired")
		return nil, core.ErrInvalidSession
	}

	return &claims, nil
}

// Validate reports whether token is a currently valid session.
func (c *SessionCodec) Validate(token string) bool {
	_, err := c.Claims(token)
	return err == nil
}
