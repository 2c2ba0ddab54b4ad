package solana

import "context"

// WSClient defines the Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeSignature waits for signature to reach commitment. The channel
	// yields at most one notification; it is closed without a value when the
	// connection drops.
	SubscribeSignature(ctx context.Context, signature, commitment string) (<-chan SignatureNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// SignatureNotification is the single message of a signature subscription.
type SignatureNotification struct {
	Signature string
	Slot      int64
	Err       interface{}
}
