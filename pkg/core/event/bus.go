package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Topic 运行事件的发布主题
const Topic = "dag-engine.run-events"

// Bus 进程内事件总线（对外导出）
// 基于watermill的gochannel Pub/Sub，事件以JSON编码传递
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus 创建事件总线（对外导出的工厂方法）
// debug为true时打印watermill内部日志
func NewBus(debug bool) *Bus {
	logger := watermill.NewStdLogger(debug, false)
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 256,
		},
		logger,
	)
	return &Bus{pubsub: pubsub}
}

// Publish 发布一条运行事件
func (b *Bus) Publish(ev *RunEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("编码事件失败: %w", err)
	}
	msg := message.NewMessage(ev.ID, payload)
	if err := b.pubsub.Publish(Topic, msg); err != nil {
		return fmt.Errorf("发布事件失败: %w", err)
	}
	return nil
}

// Subscribe 订阅运行事件
// 返回的channel在ctx取消或总线关闭后关闭；解码失败的消息被丢弃
func (b *Bus) Subscribe(ctx context.Context) (<-chan *RunEvent, error) {
	messages, err := b.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return nil, fmt.Errorf("订阅事件失败: %w", err)
	}
	out := make(chan *RunEvent, 256)
	go func() {
		defer close(out)
		for msg := range messages {
			var ev RunEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
			select {
			case out <- &ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close 关闭总线，所有订阅channel随之关闭
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
