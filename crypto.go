package kindred

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// AttestationMessage is the payload a trusted authority signs to attest
// that an account passed secondary identity verification.
func AttestationMessage(account common.Address) []byte {
	return []byte(account.Hex() + ":VERIFIED")
}

// AttestationDigest hashes the attestation message with the Ethereum
// signed-message prefix so wallet signatures can be verified directly.
func AttestationDigest(account common.Address) []byte {
	msg := AttestationMessage(account)
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg)
	return crypto.Keccak256([]byte(prefixed))
}

// SignAttestation signs the attestation digest with a hex private key.
// Used by operator tooling and tests; the node itself never holds keys.
func SignAttestation(account common.Address, privkeyHex string) ([]byte, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privkeyHex, "0x"))
	if err != nil {
		return nil, err
	}
	return crypto.Sign(AttestationDigest(account), key)
}

// RecoverAttestor recovers the address that signed an attestation for account.
func RecoverAttestor(account common.Address, signature []byte) (common.Address, error) {
	if len(signature) != 65 {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(signature))
	}

	// normalize v to 0/1 as expected by SigToPub
	sig := make([]byte, 65)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pubkey, err := crypto.SigToPub(AttestationDigest(account), sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pubkey), nil
}

// ParseAddress parses a 0x-prefixed hex account identifier.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid account address: %s", s)
	}
	return common.HexToAddress(s), nil
}
