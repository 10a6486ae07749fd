// Package notify delivers follow-up details to the caller as text messages.
// Sends are best-effort: a failure is reported to the caller's turn only as
// the absence of a delivery claim, never as a fault.
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier is the delivery contract the orchestrator depends on.
type Notifier interface {
	Send(ctx context.Context, to, body string) error
}

// TwilioNotifier sends SMS through the Twilio REST API.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioNotifier creates an SMS notifier sending from the given number.
func NewTwilioNotifier(accountSID, authToken, from string) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioNotifier{client: client, from: from}
}

// Send delivers one SMS. The Twilio SDK manages its own HTTP deadlines, so
// ctx is honored only up front.
func (n *TwilioNotifier) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(n.from)
	params.SetBody(body)

	msg, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS to %s: %w", to, err)
	}

	sid := ""
	if msg.Sid != nil {
		sid = *msg.Sid
	}
	log.Printf("📱 SMS sent to %s, SID: %s", to, sid)
	return nil
}
