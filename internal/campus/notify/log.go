package notify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/campus/pkg/cryptox"
	"github.com/aussiebroadwan/campus/pkg/slogx"
	"github.com/google/uuid"
)

// LogDispatcher writes messages to the structured log instead of sending
// them. It is the default when no broker is configured.
type LogDispatcher struct {
	Logger *slog.Logger
}

func (d LogDispatcher) Send(ctx context.Context, msg Message) (Result, error) {
	log := d.Logger
	if log == nil {
		log = slogx.FromContext(ctx)
	}

	id := uuid.NewString()
	attrs := []any{
		"message_id", id,
		"recipient", maskRecipient(msg.Recipient),
		"subject", msg.Subject,
		"template", msg.Template,
	}
	for k, v := range msg.Data {
		if sensitive[k] {
			v = "[redacted]"
		}
		attrs = append(attrs, "data."+k, v)
	}
	log.InfoContext(ctx, "notification", attrs...)
	return Result{MessageID: id}, nil
}

// maskRecipient hides all but enough of an address to tell messages apart.
func maskRecipient(r string) string {
	if strings.Contains(r, "@") {
		return cryptox.MaskEmail(r)
	}
	return cryptox.MaskPhone(r)
}
