package email

import (
	"context"
	"errors"
)

// Notifier delivers escalation alerts when an assessment raises the critical
// indicator.
type Notifier interface {
	SendEscalationAlert(ctx context.Context, userID, instrumentID, classification string) error
}

type disabledNotifier struct {
	reason string
}

func NewDisabledNotifier(reason string) Notifier {
	return &disabledNotifier{reason: reason}
}

func (n *disabledNotifier) SendEscalationAlert(_ context.Context, _, _, _ string) error {
	if n.reason == "" {
		return errors.New("escalation notifier disabled")
	}
	return errors.New(n.reason)
}
