package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultStream is the stream delivery workers consume from.
const DefaultStream = "campus:notifications"

// RedisDispatcher appends messages to a Redis stream. The stream entry id
// becomes the message id.
type RedisDispatcher struct {
	Client redis.Cmdable
	Stream string
	// MaxLen caps the stream length (approximate trim). Zero keeps all.
	MaxLen int64
}

func (d RedisDispatcher) Send(ctx context.Context, msg Message) (Result, error) {
	data, err := json.Marshal(msg.Data)
	if err != nil {
		return Result{}, fmt.Errorf("notify: encode data: %w", err)
	}

	stream := d.Stream
	if stream == "" {
		stream = DefaultStream
	}

	id, err := d.Client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: d.MaxLen,
		Approx: d.MaxLen > 0,
		Values: map[string]any{
			"recipient": msg.Recipient,
			"subject":   msg.Subject,
			"template":  msg.Template,
			"data":      string(data),
		},
	}).Result()
	if err != nil {
		return Result{}, fmt.Errorf("notify: xadd %s: %w", stream, err)
	}
	return Result{MessageID: id}, nil
}
