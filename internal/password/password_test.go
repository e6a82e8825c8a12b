package password

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/shopcore/identity/internal/common"
)

func TestHashAndVerify_Roundtrip(t *testing.T) {
	h, err := Hash("pw123456")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h == "pw123456" {
		t.Fatal("hash must not equal the cleartext password")
	}

	if !Verify("pw123456", h) {
		t.Fatal("Verify should accept the original password")
	}
	if Verify("pw1234567", h) {
		t.Fatal("Verify should reject a different password")
	}
}

func TestHash_Salted(t *testing.T) {
	h1, err := Hash("same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	h2, err := Hash("same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password must differ (salt)")
	}
}

func TestHash_CostFloor(t *testing.T) {
	h, err := Hash("pw123456")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(h))
	if err != nil {
		t.Fatalf("bcrypt.Cost error: %v", err)
	}
	if cost < 10 {
		t.Fatalf("cost %d below the 10-round floor", cost)
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	_, err := Hash("")
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestVerifyDecoy_FullCostHash(t *testing.T) {
	// the decoy only burns real time if it is a well-formed hash at the
	// production work factor
	cost, err := bcrypt.Cost(decoyHash)
	if err != nil {
		t.Fatalf("decoy hash is malformed: %v", err)
	}
	if cost != Cost {
		t.Fatalf("decoy hash cost %d, want %d", cost, Cost)
	}

	VerifyDecoy("anything")
}

func TestVerify_MalformedHash(t *testing.T) {
	if Verify("whatever", "not-a-bcrypt-hash") {
		t.Fatal("Verify must return false for a malformed hash")
	}
	if Verify("whatever", "") {
		t.Fatal("Verify must return false for an empty hash")
	}
}
