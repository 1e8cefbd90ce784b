package redis

import (
	"context"
	"encoding/json"

	"testops/internal/core/ports"
	"testops/internal/domain"

	"github.com/redis/go-redis/v9"
)

// EventBus broadcasts execution and task status transitions over redis
// pub/sub so dashboards and other listeners can follow long-running work
// without polling the API.
type EventBus struct {
	client           *redis.Client
	executionChannel string
	taskChannel      string
}

var _ ports.EventBus = (*EventBus)(nil)

func NewEventBus(client *redis.Client) *EventBus {
	return &EventBus{
		client:           client,
		executionChannel: "testops:events:execution",
		taskChannel:      "testops:events:task",
	}
}

func (b *EventBus) PublishExecutionStatus(ctx context.Context, event domain.ExecutionStatusEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.executionChannel, payload).Err()
}

func (b *EventBus) PublishTaskStatus(ctx context.Context, event domain.TaskStatusEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.taskChannel, payload).Err()
}

// SubscribeExecutionStatus opens a continuous stream of execution status
// events. The returned channel closes when ctx is cancelled.
func (b *EventBus) SubscribeExecutionStatus(ctx context.Context) (<-chan domain.ExecutionStatusEvent, error) {
	pubsub := b.client.Subscribe(ctx, b.executionChannel)

	events := make(chan domain.ExecutionStatusEvent)
	go func() {
		defer close(events)
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					continue
				}
				var event domain.ExecutionStatusEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err == nil {
					events <- event
				}
			}
		}
	}()

	return events, nil
}
