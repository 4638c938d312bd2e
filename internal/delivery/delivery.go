package delivery

import "context"

// Receipt is the provider confirmation for a single outbound send.
type Receipt struct {
	ID       string
	Provider string
	Status   string
}

// Sender delivers one composed message to one recipient. Implementations
// make a single logical delivery attempt per call; idempotency across
// calls is the provider's concern, not the caller's.
type Sender interface {
	Send(ctx context.Context, to, body string) (Receipt, error)
}
