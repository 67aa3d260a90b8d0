package auth

import "testing"

func TestHashAndVerifyToken(t *testing.T) {
	t.Parallel()

	hash, err := HashToken("s3cret-admin-token")
	if err != nil {
		t.Fatalf("hash token: %v", err)
	}
	if hash == "" {
		t.Fatalf("expected non-empty hash")
	}
	if !VerifyToken("s3cret-admin-token", hash) {
		t.Fatalf("expected token verification to succeed")
	}
	if VerifyToken("wrong-token", hash) {
		t.Fatalf("did not expect wrong token to verify")
	}
}

func TestHashTokenRejectsBlank(t *testing.T) {
	t.Parallel()

	if _, err := HashToken("  "); err == nil {
		t.Fatalf("expected error for blank token")
	}
}
