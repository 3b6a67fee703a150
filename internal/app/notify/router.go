// internal/app/notify/router.go
package notify

import (
	"context"
	"fmt"
)

// Router dispatches a credential to the sender matching the destination
// channel. A nil slot means that channel is not configured in this
// deployment.
type Router struct {
	SMS   Sender
	Email Sender
}

func (r *Router) SendCredential(ctx context.Context, dest Destination, username, secret string) error {
	switch dest.Channel {
	case ChannelSMS:
		if r.SMS == nil {
			return fmt.Errorf("sms channel is not configured")
		}
		return r.SMS.SendCredential(ctx, dest, username, secret)
	case ChannelEmail:
		if r.Email == nil {
			return fmt.Errorf("email channel is not configured")
		}
		return r.Email.SendCredential(ctx, dest, username, secret)
	default:
		return fmt.Errorf("no delivery channel for destination %q", dest.Channel)
	}
}
