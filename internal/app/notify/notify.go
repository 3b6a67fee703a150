// Package notify delivers registration credentials to new members.
//
// Delivery is an external collaborator from the registry's point of view:
// the orchestrator hands a destination and a one-time credential to a Sender
// and only cares whether delivery succeeded. Senders must never log the
// secret.
package notify

import (
	"context"

	"github.com/meskelsoft/partyreg/internal/app/system/normalize"
)

// Channel identifies how a credential is delivered.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
	ChannelNone  Channel = "none"
)

// Destination is a resolved delivery target.
type Destination struct {
	Channel Channel
	To      string // E.164 phone for sms, address for email
}

// Sender delivers a credential to a destination.
type Sender interface {
	SendCredential(ctx context.Context, dest Destination, username, secret string) error
}

// PickDestination chooses the delivery channel by data availability:
// SMS when the phone is a deliverable E.164 number, otherwise email when
// present, otherwise none (the member is flagged for operator follow-up).
func PickDestination(phone, email string) Destination {
	if p := normalize.Phone(phone); normalize.Deliverable(p) {
		return Destination{Channel: ChannelSMS, To: p}
	}
	if e := normalize.Email(email); e != "" {
		return Destination{Channel: ChannelEmail, To: e}
	}
	return Destination{Channel: ChannelNone}
}
