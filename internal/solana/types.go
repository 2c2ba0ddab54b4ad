package solana

import "math"

// Commitment levels understood by the RPC.
const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// DefaultFeeRouterProgramID is the on-chain fee router whose per-mint
// account is derived from seeds ["router", mint].
const DefaultFeeRouterProgramID = "4ppsxyu3yBvh97DKU98PFTDb77bmz5utvcAkWVXSTMoB"

// SignatureStatus from getSignatureStatuses.
type SignatureStatus struct {
	Slot               int64
	Confirmations      *uint64 // nil once rooted
	Err                interface{}
	ConfirmationStatus string
}

// Reached reports whether the status is at or beyond commitment.
func (s *SignatureStatus) Reached(commitment string) bool {
	if s == nil {
		return false
	}
	have, ok := commitmentRank[s.ConfirmationStatus]
	if !ok {
		return false
	}
	return have >= commitmentRank[commitment]
}

var commitmentRank = map[string]int{
	CommitmentProcessed: 0,
	CommitmentConfirmed: 1,
	CommitmentFinalized: 2,
}

// SOLToLamports converts a SOL amount to lamports, rounding down.
func SOLToLamports(sol float64) uint64 {
	if sol <= 0 || math.IsNaN(sol) {
		return 0
	}
	return uint64(math.Floor(sol * LamportsPerSOL))
}
