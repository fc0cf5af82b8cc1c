package service

import (
	"context"

	"github.com/aussiebroadwan/campus/internal/campus/notify"
	"github.com/aussiebroadwan/campus/pkg/slogx"
)

// dispatch sends msg and only logs failures. A notification never decides
// whether the surrounding operation succeeded.
func dispatch(ctx context.Context, d notify.Dispatcher, msg notify.Message) {
	if d == nil || msg.Recipient == "" {
		return
	}
	res, err := d.Send(ctx, msg)
	log := slogx.FromContext(ctx)
	if err != nil {
		log.Warn("notification dispatch failed", "template", msg.Template, "error", err)
		return
	}
	log.Debug("notification dispatched", "template", msg.Template, "message_id", res.MessageID)
}
