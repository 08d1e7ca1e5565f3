package auth

import (
	"testing"

	"github.com/oesukam/r-incident-query-webapp/pkg/crypto"
)

// Requirement: exact configured credentials verify; any single-character mutation does not
func TestVerifyCredentials(t *testing.T) {
	verifier := NewCredentialVerifier("analyst", "correct-horse-battery")

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{"exact match", "analyst", "correct-horse-battery", true},
		{"wrong username", "analysx", "correct-horse-battery", false},
		{"wrong password", "analyst", "correct-horse-batterx", false},
		{"username case differs", "Analyst", "correct-horse-battery", false},
		{"password truncated", "analyst", "correct-horse-batter", false},
		{"both empty", "", "", false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := verifier.Verify(test.username, test.password); got != test.want {
				t.Errorf("Verify(%q, %q) = %v, want %v", test.username, test.password, got, test.want)
			}
		})
	}
}

// Requirement: unconfigured credentials reject everything
func TestVerifyCredentialsNotConfigured(t *testing.T) {
	verifier := NewCredentialVerifier("", "")

	if verifier.Verify("", "") {
		t.Error("Empty configuration must not allow empty credentials")
	}
	if verifier.Verify("analyst", "password") {
		t.Error("Empty configuration must not allow any credentials")
	}
}

// Requirement: an argon2id encoded configured password verifies the plaintext attempt
func TestVerifyCredentialsHashedPassword(t *testing.T) {
	hashed, err := crypto.NewArgon2().Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	verifier := NewCredentialVerifier("analyst", hashed)

	if !verifier.Verify("analyst", "correct-horse-battery") {
		t.Error("Correct password should verify against stored hash")
	}
	if verifier.Verify("analyst", "wrong-password") {
		t.Error("Wrong password should not verify against stored hash")
	}
	if verifier.Verify("analyst", hashed) {
		t.Error("Supplying the hash itself as the password should not verify")
	}
}
