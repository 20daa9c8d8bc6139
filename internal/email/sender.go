package email

import (
	"context"
	"errors"
)

// ErrDeliveryDisabled is returned by senders that accept a message but do
// not deliver it.
var ErrDeliveryDisabled = errors.New("email delivery disabled")

// Sender delivers a templated message to one recipient.
type Sender interface {
	Send(ctx context.Context, to string, params TemplateParams) (*Result, error)
	Name() string
}

type Result struct {
	Provider string
	Status   int
}
