// Package solana is the ledger client: JSON-RPC over HTTP, signature
// confirmation over polling or websocket, transfer building and address
// helpers.
package solana

import "context"

// RPCClient defines the Solana RPC HTTP methods the service uses.
type RPCClient interface {
	// GetTransaction retrieves a confirmed transaction by signature.
	// Returns nil, nil if the ledger does not know the signature.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetLatestBlockhash returns a recent blockhash for new transactions.
	GetLatestBlockhash(ctx context.Context) (string, error)

	// SendTransaction submits a signed, serialized transaction.
	SendTransaction(ctx context.Context, raw []byte) (string, error)

	// GetSignatureStatuses returns one status per signature; nil when unknown.
	GetSignatureStatuses(ctx context.Context, signatures ...string) ([]*SignatureStatus, error)
}

// Transaction represents a Solana transaction.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix timestamp (seconds)
	Meta      *TransactionMeta
	Message   *TransactionMessage
}

// TransactionMeta contains transaction metadata.
type TransactionMeta struct {
	Err          interface{}
	Fee          uint64
	PreBalances  []uint64
	PostBalances []uint64
	LogMessages  []string
}

// TransactionMessage contains the parsed transaction message.
// AccountKeys lists static keys followed by any lookup-table addresses,
// in the order balances are reported.
type TransactionMessage struct {
	AccountKeys []string
}

// AccountIndex returns the position of account in the message, or -1.
func (tx *Transaction) AccountIndex(account string) int {
	if tx == nil || tx.Message == nil {
		return -1
	}
	for i, k := range tx.Message.AccountKeys {
		if k == account {
			return i
		}
	}
	return -1
}

// ReceivedLamports measures what account gained in tx, gross of the network
// fee when account paid it (fee payer is index 0). When another account paid
// the fee, the plain balance delta is returned: adding the fee back there
// would credit lamports the account never received. Returns 0 when the
// account is absent or the balance fell.
func (tx *Transaction) ReceivedLamports(account string) uint64 {
	if tx == nil || tx.Meta == nil {
		return 0
	}
	idx := tx.AccountIndex(account)
	if idx < 0 {
		return 0
	}

	var pre, post uint64
	if idx < len(tx.Meta.PreBalances) {
		pre = tx.Meta.PreBalances[idx]
	}
	if idx < len(tx.Meta.PostBalances) {
		post = tx.Meta.PostBalances[idx]
	}
	if idx == 0 {
		post += tx.Meta.Fee
	}
	if post <= pre {
		return 0
	}
	return post - pre
}
