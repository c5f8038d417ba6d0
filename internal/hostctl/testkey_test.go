package hostctl

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
)

// testHostKey returns a throwaway ed25519 key for the fake SSH server's
// host key; tests don't verify it (InsecureIgnoreHostKey on the client).
func testHostKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	return priv
}
