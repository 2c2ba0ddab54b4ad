package solana

import (
	"testing"

	"github.com/mr-tron/base58"
)

const (
	systemProgram = "11111111111111111111111111111111"
	tokenProgram  = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

func TestIsValidAddress(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{systemProgram, true},
		{tokenProgram, true},
		{"", false},
		{"not-base58-0OIl", false},
		{"abc", false},
		{base58.Encode(make([]byte, 33)), false},
	}
	for _, tt := range tests {
		if got := IsValidAddress(tt.in); got != tt.want {
			t.Errorf("IsValidAddress(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFindProgramAddress_OffCurveAndDeterministic(t *testing.T) {
	seeds := [][]byte{[]byte("router"), make([]byte, 32)}

	a, bumpA, err := FindProgramAddress(seeds, DefaultFeeRouterProgramID)
	if err != nil {
		t.Fatalf("FindProgramAddress: %v", err)
	}
	b, bumpB, err := FindProgramAddress(seeds, DefaultFeeRouterProgramID)
	if err != nil {
		t.Fatalf("FindProgramAddress: %v", err)
	}
	if a != b || bumpA != bumpB {
		t.Errorf("derivation not deterministic: %s/%d vs %s/%d", a, bumpA, b, bumpB)
	}

	raw, err := DecodeAddress(a)
	if err != nil {
		t.Fatalf("derived address invalid: %v", err)
	}
	if isOnCurve(raw) {
		t.Error("derived address must be off curve")
	}
}

func TestFindProgramAddress_Errors(t *testing.T) {
	if _, _, err := FindProgramAddress(nil, "bad"); err == nil {
		t.Error("expected error for invalid program id")
	}
	if _, _, err := FindProgramAddress([][]byte{make([]byte, 33)}, systemProgram); err == nil {
		t.Error("expected error for oversized seed")
	}
}

func TestRouterPDA_DiffersPerMint(t *testing.T) {
	a, err := RouterPDA(tokenProgram, DefaultFeeRouterProgramID)
	if err != nil {
		t.Fatalf("RouterPDA: %v", err)
	}
	b, err := RouterPDA(systemProgram, DefaultFeeRouterProgramID)
	if err != nil {
		t.Fatalf("RouterPDA: %v", err)
	}
	if a == b {
		t.Error("different mints should derive different router accounts")
	}
	if _, err := RouterPDA("bad", DefaultFeeRouterProgramID); err == nil {
		t.Error("expected error for invalid mint")
	}
}
