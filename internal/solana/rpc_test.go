package solana

import "testing"

func TestTransaction_ReceivedLamports(t *testing.T) {
	tx := &Transaction{
		Meta: &TransactionMeta{
			Fee:          5,
			PreBalances:  []uint64{100, 50},
			PostBalances: []uint64{1000, 80},
		},
		Message: &TransactionMessage{AccountKeys: []string{"collector", "other"}},
	}

	tests := []struct {
		name    string
		account string
		want    uint64
	}{
		{"fee payer adds fee back", "collector", 905},
		{"non payer plain delta", "other", 30},
		{"absent account", "stranger", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tx.ReceivedLamports(tt.account); got != tt.want {
				t.Errorf("ReceivedLamports(%q) = %d, want %d", tt.account, got, tt.want)
			}
		})
	}
}

func TestTransaction_ReceivedLamports_CollectorNotFeePayer(t *testing.T) {
	// A relayer pays the fee; the collector receives exactly 900.
	tx := &Transaction{
		Meta: &TransactionMeta{
			Fee:          5000,
			PreBalances:  []uint64{10_000_000, 100},
			PostBalances: []uint64{9_995_000, 1000},
		},
		Message: &TransactionMessage{AccountKeys: []string{"relayer", "collector"}},
	}
	if got := tx.ReceivedLamports("collector"); got != 900 {
		t.Errorf("ReceivedLamports(collector) = %d, want 900", got)
	}
	if got := tx.ReceivedLamports("relayer"); got != 0 {
		t.Errorf("ReceivedLamports(relayer) = %d, want 0", got)
	}
}

func TestTransaction_ReceivedLamports_ClampsLoss(t *testing.T) {
	tx := &Transaction{
		Meta: &TransactionMeta{
			Fee:          5,
			PreBalances:  []uint64{1000},
			PostBalances: []uint64{900},
		},
		Message: &TransactionMessage{AccountKeys: []string{"collector"}},
	}
	if got := tx.ReceivedLamports("collector"); got != 0 {
		t.Errorf("expected 0 for a balance drop, got %d", got)
	}
}

func TestTransaction_ReceivedLamports_NilSafe(t *testing.T) {
	var tx *Transaction
	if got := tx.ReceivedLamports("collector"); got != 0 {
		t.Errorf("expected 0 for nil tx, got %d", got)
	}
	if got := (&Transaction{}).ReceivedLamports("collector"); got != 0 {
		t.Errorf("expected 0 without meta, got %d", got)
	}
}

func TestSignatureStatus_Reached(t *testing.T) {
	tests := []struct {
		status     string
		commitment string
		want       bool
	}{
		{CommitmentProcessed, CommitmentConfirmed, false},
		{CommitmentConfirmed, CommitmentConfirmed, true},
		{CommitmentFinalized, CommitmentConfirmed, true},
		{CommitmentConfirmed, CommitmentFinalized, false},
		{"", CommitmentProcessed, false},
	}
	for _, tt := range tests {
		s := &SignatureStatus{ConfirmationStatus: tt.status}
		if got := s.Reached(tt.commitment); got != tt.want {
			t.Errorf("Reached(%q) with status %q = %v, want %v", tt.commitment, tt.status, got, tt.want)
		}
	}
}
