package security

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if hash == "s3cret" {
		t.Fatalf("hash must not equal the plain password")
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	if cost != PasswordCost {
		t.Fatalf("cost: got %d, want %d", cost, PasswordCost)
	}

	if err := CheckPassword(hash, "s3cret"); err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("expected mismatch")
	}
}

func TestCheckPasswordRejectsNonHash(t *testing.T) {
	if err := CheckPassword("plain-text-stored", "plain-text-stored"); err == nil {
		t.Fatalf("a non-bcrypt value must never verify")
	}
}
