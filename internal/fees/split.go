package fees

import "agent-launchpad/internal/domain"

// Split divides amount by basis points, rounding each share down. The sum
// of the shares never exceeds amount; the remainder stays with the collector.
func Split(amount uint64, split []domain.FeeShare) []domain.RecipientAmount {
	out := make([]domain.RecipientAmount, 0, len(split))
	for _, s := range split {
		out = append(out, domain.RecipientAmount{Wallet: s.Wallet, Lamports: share(amount, uint64(s.BasisPoints))})
	}
	return out
}

// share is floor(amount*bps/10000) without overflowing 64 bits.
func share(amount, bps uint64) uint64 {
	const total = domain.TotalBasisPoints
	return amount/total*bps + (amount%total)*bps/total
}
