package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/JoeShih716/farm-dice-server/internal/core/domain"
	"github.com/JoeShih716/farm-dice-server/internal/core/ports"
	pkgRedis "github.com/JoeShih716/farm-dice-server/pkg/redis"
)

// RedisChannel 所有實例共用的房間事件頻道
const RedisChannel = "farm:room-events"

// redisPubSub 由 pkg/redis.Client 實作
type redisPubSub interface {
	Publish(ctx context.Context, channel string, message any) error
	Subscribe(ctx context.Context, channel string, handler pkgRedis.MessageHandler) error
}

// Redis 經由 Redis Pub/Sub 轉送事件。
// 發佈者自己也會收到訊息，本地投遞只走訂閱這一條路徑。
type Redis struct {
	client redisPubSub
	cancel context.CancelFunc
	logger *slog.Logger
}

var _ ports.Broadcaster = (*Redis)(nil)

// NewRedis 訂閱事件頻道，收到的事件交給 deliverer
func NewRedis(ctx context.Context, client redisPubSub, deliverer ports.RoomDeliverer, logger *slog.Logger) (*Redis, error) {
	logger = logger.With("component", "broadcast", "driver", "redis")
	subCtx, cancel := context.WithCancel(ctx)

	err := client.Subscribe(subCtx, RedisChannel, func(payload string) {
		var ev domain.RoomEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			logger.Warn("Invalid room event payload", "error", err)
			return
		}
		deliverer.Deliver(ev)
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %s: %w", RedisChannel, err)
	}

	return &Redis{client: client, cancel: cancel, logger: logger}, nil
}

func (r *Redis) Publish(ctx context.Context, ev domain.RoomEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, RedisChannel, string(b))
}

// Close 結束訂閱 (底層連線由呼叫端關閉)
func (r *Redis) Close() error {
	r.cancel()
	return nil
}
