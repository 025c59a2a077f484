package messaging

import (
	"context"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/matst80/slask-seo/pkg/config"
)

// ConfigNotifier publishes config changes so the other nodes can reload.
type ConfigNotifier struct {
	Prefix string
	mu     sync.Mutex
	ch     Channel
}

func NewConfigNotifier(ch Channel, prefix string) (*ConfigNotifier, error) {
	if err := DefineTopic(ch, prefix, ConfigChanged); err != nil {
		return nil, fmt.Errorf("define config topic: %w", err)
	}
	return &ConfigNotifier{Prefix: prefix, ch: ch}, nil
}

func (n *ConfigNotifier) ConfigChanged(change config.Change) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return Publish(n.ch, n.Prefix, ConfigChanged, change)
}

type Reloader interface {
	Reload(ctx context.Context) error
}

// ConfigChangeHandler reloads store when a change for its store code arrives.
func ConfigChangeHandler(storeCode string, store Reloader) func(amqp.Delivery) error {
	return func(d amqp.Delivery) error {
		return handleConfigChange(storeCode, store, d.Body)
	}
}

func handleConfigChange(storeCode string, store Reloader, body []byte) error {
	var change config.Change
	if err := sonic.Unmarshal(body, &change); err != nil {
		return fmt.Errorf("decode config change: %w", err)
	}
	if change.StoreCode != storeCode {
		return nil
	}
	zap.L().Info("config changed, reloading", zap.String("path", change.Path), zap.String("store", change.StoreCode))
	return store.Reload(context.Background())
}

func ListenForConfigChanges(conn *amqp.Connection, prefix, storeCode string, store Reloader) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	if err := DefineTopic(ch, prefix, ConfigChanged); err != nil {
		ch.Close()
		return err
	}
	return ListenToTopic(ch, prefix, ConfigChanged, ConfigChangeHandler(storeCode, store))
}
