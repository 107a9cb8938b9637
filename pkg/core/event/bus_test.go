package event_test

import (
	"context"
	"testing"
	"time"

	"github.com/LENAX/dag-engine/pkg/core/event"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := event.NewBus(false)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("订阅失败: %v", err)
	}

	published := event.NewRunEvent(event.EventNodeSucceeded, "run-1", "wf-1", "A", "")
	if err := bus.Publish(published); err != nil {
		t.Fatalf("发布失败: %v", err)
	}

	select {
	case got := <-events:
		if got.ID != published.ID {
			t.Fatalf("事件ID不匹配: %s / %s", got.ID, published.ID)
		}
		if got.Type != event.EventNodeSucceeded || got.Node != "A" || got.RunID != "run-1" {
			t.Fatalf("事件内容不匹配: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("等待事件超时")
	}
}

func TestBusMultipleSubscribers(t *testing.T) {
	bus := event.NewBus(false)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("订阅失败: %v", err)
	}
	second, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("订阅失败: %v", err)
	}

	if err := bus.Publish(event.NewRunEvent(event.EventRunStarted, "run-2", "wf-1", "", "")); err != nil {
		t.Fatalf("发布失败: %v", err)
	}

	for i, ch := range []<-chan *event.RunEvent{first, second} {
		select {
		case got := <-ch:
			if got.Type != event.EventRunStarted {
				t.Fatalf("订阅者%d收到错误事件: %+v", i, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("订阅者%d等待事件超时", i)
		}
	}
}
