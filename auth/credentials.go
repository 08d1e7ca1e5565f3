package auth

import (
	"crypto/subtle"

	"github.com/sirupsen/logrus"

	"github.com/oesukam/r-incident-query-webapp/pkg/crypto"
)

// CredentialVerifier checks a login attempt against the single configured
// analyst credential pair. The configured password may be plaintext or an
// argon2id encoded hash.
type CredentialVerifier struct {
	username string
	password string
	hasher   crypto.PasswordHandler
}

func NewCredentialVerifier(username, password string) *CredentialVerifier {
	return &CredentialVerifier{
		username: username,
		password: password,
		hasher:   crypto.NewArgon2(),
	}
}

// Verify reports whether the given credentials match the configured pair.
// Missing configuration is treated as "nothing matches", never as open access.
func (v *CredentialVerifier) Verify(username, password string) bool {
	if v.username == "" || v.password == "" {
		logrus.Error("Auth credentials not configured in environment variables")
		return false
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1

	var passwordOK bool
	if crypto.IsEncodedHash(v.password) {
		ok, err := v.hasher.Verify(password, v.password)
		passwordOK = ok && err == nil
	} else {
		passwordOK = subtle.ConstantTimeCompare([]byte(password), []byte(v.password)) == 1
	}

	valid := usernameOK && passwordOK
	if valid {
		logrus.WithField("username", username).Info("Successful authentication")
	} else {
		logrus.WithField("username", username).Warn("Failed authentication attempt")
	}

	return valid
}
