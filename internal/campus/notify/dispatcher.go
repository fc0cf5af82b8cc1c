// Package notify hands outbound messages (SMS codes, decision notices) to
// whatever delivers them. Delivery itself happens elsewhere.
package notify

import (
	"context"
	"errors"
)

// Template names understood by the delivery side.
const (
	TemplateSMSCode        = "twofactor_sms_code"
	TemplateRoleDecision   = "role_request_decision"
	TemplateRoleRequested  = "role_request_received"
	TemplateAccountCreated = "account_provisioned"
)

var (
	ErrQueueFull = errors.New("notify: queue full")
	ErrClosed    = errors.New("notify: dispatcher closed")
)

// Message is one outbound notification.
type Message struct {
	Recipient string // email address or phone number
	Subject   string
	Template  string
	Data      map[string]string
}

// Result identifies an accepted message.
type Result struct {
	MessageID string
}

// Dispatcher accepts messages for delivery.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// sensitive data keys are never written to logs.
var sensitive = map[string]bool{"code": true}
