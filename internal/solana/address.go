package solana

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// AddressLength is the byte length of a decoded account address.
const AddressLength = 32

// maxSeedLength is the ledger's limit on a single PDA seed.
const maxSeedLength = 32

// ErrNoViableBump is returned when no bump seed yields an off-curve address.
var ErrNoViableBump = errors.New("unable to find a viable program address bump seed")

// IsValidAddress reports whether s is base58 encoding exactly 32 bytes.
func IsValidAddress(s string) bool {
	_, err := DecodeAddress(s)
	return err == nil
}

// DecodeAddress decodes a base58 account address.
func DecodeAddress(s string) ([]byte, error) {
	if s == "" {
		return nil, errors.New("empty address")
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	if len(b) != AddressLength {
		return nil, fmt.Errorf("address must be %d bytes, got %d", AddressLength, len(b))
	}
	return b, nil
}

// FindProgramAddress derives the program-derived address for seeds under
// programID, searching bump seeds from 255 down. Returns the base58 address
// and the bump used.
func FindProgramAddress(seeds [][]byte, programID string) (string, uint8, error) {
	program, err := DecodeAddress(programID)
	if err != nil {
		return "", 0, fmt.Errorf("program id: %w", err)
	}
	for i, s := range seeds {
		if len(s) > maxSeedLength {
			return "", 0, fmt.Errorf("seed %d exceeds %d bytes", i, maxSeedLength)
		}
	}

	for bump := byte(255); bump > 0; bump-- {
		data := make([]byte, 0, 64+len(seeds)*maxSeedLength)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, bump)
		data = append(data, program...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)

		// A PDA must not be a valid ed25519 public key.
		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:]), bump, nil
		}
	}

	return "", 0, ErrNoViableBump
}

// RouterPDA derives the fee-router account for a mint: seeds ["router", mint].
func RouterPDA(mint, routerProgramID string) (string, error) {
	mintBytes, err := DecodeAddress(mint)
	if err != nil {
		return "", fmt.Errorf("mint: %w", err)
	}
	addr, _, err := FindProgramAddress([][]byte{[]byte("router"), mintBytes}, routerProgramID)
	return addr, err
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
