package kindred

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func TestAttestationRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("key generation failed: %v", err)
	}
	authority := crypto.PubkeyToAddress(key.PublicKey)

	subject, err := ParseAddress("0x1111111111111111111111111111111111111111")
	if err != nil {
		t.Fatalf("parse address failed: %v", err)
	}

	sig, err := crypto.Sign(AttestationDigest(subject), key)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	recovered, err := RecoverAttestor(subject, sig)
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if recovered != authority {
		t.Fatalf("expected attestor %s got %s", authority.Hex(), recovered.Hex())
	}
}

func TestRecoverAttestorLegacyV(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("key generation failed: %v", err)
	}
	subject := crypto.PubkeyToAddress(key.PublicKey)

	sig, err := crypto.Sign(AttestationDigest(subject), key)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	// wallets commonly emit v as 27/28
	sig[64] += 27

	recovered, err := RecoverAttestor(subject, sig)
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if recovered != crypto.PubkeyToAddress(key.PublicKey) {
		t.Fatalf("legacy v signature did not recover")
	}
}

func TestParseAddressRejectsGarbage(t *testing.T) {
	if _, err := ParseAddress("not-an-address"); err == nil {
		t.Fatalf("expected error for malformed address")
	}
	if _, err := ParseAddress("0x1234"); err == nil {
		t.Fatalf("expected error for short address")
	}
}
