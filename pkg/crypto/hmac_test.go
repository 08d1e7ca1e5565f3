package crypto

import "testing"

func TestSignPayloadIsDeterministic(t *testing.T) {
	payload := []byte(`{"username":"analyst","expiresAt":1735689600000}`)

	first := SignPayload(payload, "secret")
	second := SignPayload(payload, "secret")

	if first != second {
		t.Errorf("Expected identical signatures, got %s and %s", first, second)
	}

	if len(first) != 64 {
		t.Errorf("Expected 64 hex characters for SHA-256, got %d", len(first))
	}
}

func TestVerifySignatureAcceptsValidSignature(t *testing.T) {
	payload := []byte("payload")
	sig := SignPayload(payload, "secret")

	if !VerifySignature(payload, sig, "secret") {
		t.Error("Valid signature should verify")
	}
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	payload := []byte("payload")
	sig := SignPayload(payload, "secret")

	tests := []struct {
		name      string
		payload   []byte
		signature string
		secret    string
	}{
		{"modified payload", []byte("Payload"), sig, "secret"},
		{"wrong secret", payload, sig, "other-secret"},
		{"flipped signature character", payload, flipFirstChar(sig), "secret"},
		{"empty signature", payload, "", "secret"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if VerifySignature(test.payload, test.signature, test.secret) {
				t.Error("Tampered signature should not verify")
			}
		})
	}
}

func flipFirstChar(s string) string {
	b := []byte(s)
	if b[0] == 'a' {
		b[0] = 'b'
	} else {
		b[0] = 'a'
	}
	return string(b)
}
