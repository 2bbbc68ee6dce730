package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Channel is the redis pub/sub channel events travel over.
const Channel = "hms:notifications"

// envelope is the wire shape published to redis: the event plus its targets.
type envelope struct {
	Event   Event    `json:"event"`
	Targets []string `json:"targets"`
}

// RedisNotifier publishes events to a shared redis channel so fan-out reaches
// users connected to other instances. Each instance runs Listen to deliver
// inbound events through its local directory.
type RedisNotifier struct {
	client *redis.Client
	local  *LocalNotifier
	logger zerolog.Logger
}

func NewRedisNotifier(client *redis.Client, local *LocalNotifier, logger zerolog.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, local: local, logger: logger}
}

// Notify publishes the event to the shared channel. On publish failure it
// falls back to local-only delivery so a redis outage degrades rather than
// silences notifications.
func (n *RedisNotifier) Notify(ctx context.Context, event Event, targetUserIDs ...string) {
	data, err := json.Marshal(envelope{Event: event, Targets: targetUserIDs})
	if err != nil {
		n.logger.Error().Err(err).Str("type", event.Type).Msg("marshal notification envelope")
		return
	}

	if err := n.client.Publish(ctx, Channel, data).Err(); err != nil {
		n.logger.Warn().Err(err).Msg("redis publish failed, delivering locally")
		n.local.Notify(ctx, event, targetUserIDs...)
	}
}

// Listen subscribes to the shared channel and delivers inbound events via the
// local directory until the context is cancelled. Run it in a goroutine.
func (n *RedisNotifier) Listen(ctx context.Context) {
	sub := n.client.Subscribe(ctx, Channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				n.logger.Warn().Err(err).Msg("malformed notification envelope")
				continue
			}
			n.local.Notify(ctx, env.Event, env.Targets...)
		}
	}
}
