package solana

import (
	"context"
	"fmt"

	sol "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// Signer holds the collector keypair that pays and signs distributions.
type Signer struct {
	key sol.PrivateKey
}

// LoadSigner decodes a base58 encoded 64-byte secret key.
func LoadSigner(secret string) (*Signer, error) {
	key, err := sol.PrivateKeyFromBase58(secret)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	if len(key) != 64 {
		return nil, fmt.Errorf("secret key must be 64 bytes, got %d", len(key))
	}
	return &Signer{key: key}, nil
}

// NewRandomSigner generates a throwaway keypair.
func NewRandomSigner() (*Signer, error) {
	key, err := sol.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &Signer{key: key}, nil
}

// Address returns the base58 public key.
func (s *Signer) Address() string {
	return s.key.PublicKey().String()
}

// Transfer is one system transfer from the signer.
type Transfer struct {
	To       string
	Lamports uint64
}

// BuildTransfers builds one transaction with a system transfer per entry,
// paid and signed by s. It returns the wire bytes and the signature.
func (s *Signer) BuildTransfers(blockhash string, transfers []Transfer) ([]byte, string, error) {
	if len(transfers) == 0 {
		return nil, "", fmt.Errorf("no transfers")
	}
	hash, err := sol.HashFromBase58(blockhash)
	if err != nil {
		return nil, "", fmt.Errorf("decode blockhash: %w", err)
	}

	from := s.key.PublicKey()
	instructions := make([]sol.Instruction, 0, len(transfers))
	for i, t := range transfers {
		to, err := sol.PublicKeyFromBase58(t.To)
		if err != nil {
			return nil, "", fmt.Errorf("transfer %d: recipient: %w", i, err)
		}
		instructions = append(instructions, system.NewTransferInstruction(t.Lamports, from, to).Build())
	}

	tx, err := sol.NewTransaction(instructions, hash, sol.TransactionPayer(from))
	if err != nil {
		return nil, "", fmt.Errorf("build transaction: %w", err)
	}

	sigs, err := tx.Sign(func(key sol.PublicKey) *sol.PrivateKey {
		if key.Equals(from) {
			return &s.key
		}
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("sign transaction: %w", err)
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, "", fmt.Errorf("serialize transaction: %w", err)
	}
	return raw, sigs[0].String(), nil
}

// Ledger combines the RPC client, a confirmer and the collector signer.
type Ledger struct {
	rpc       RPCClient
	confirmer Confirmer
	signer    *Signer
}

// NewLedger creates a Ledger.
func NewLedger(rpc RPCClient, confirmer Confirmer, signer *Signer) *Ledger {
	return &Ledger{rpc: rpc, confirmer: confirmer, signer: signer}
}

// CollectorAddress is the address of the signing wallet.
func (l *Ledger) CollectorAddress() string {
	return l.signer.Address()
}

// GetTransaction fetches a confirmed transaction; nil when unknown.
func (l *Ledger) GetTransaction(ctx context.Context, signature string) (*Transaction, error) {
	return l.rpc.GetTransaction(ctx, signature)
}

// Confirm waits for a signature submitted elsewhere.
func (l *Ledger) Confirm(ctx context.Context, signature string) error {
	return l.confirmer.Confirm(ctx, signature)
}

// SubmitAndConfirm sends raw and waits for confirmation.
func (l *Ledger) SubmitAndConfirm(ctx context.Context, raw []byte) (string, error) {
	sig, err := l.rpc.SendTransaction(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}
	if err := l.confirmer.Confirm(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// TransferBatch sends all transfers from the collector in one transaction
// and waits for confirmation.
func (l *Ledger) TransferBatch(ctx context.Context, transfers []Transfer) (string, error) {
	blockhash, err := l.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("get blockhash: %w", err)
	}
	raw, _, err := l.signer.BuildTransfers(blockhash, transfers)
	if err != nil {
		return "", err
	}
	return l.SubmitAndConfirm(ctx, raw)
}
