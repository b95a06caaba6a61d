package service

import (
	"context"
	"fmt"
	"time"

	"github.com/OrmirUlaj/gaming-marketplace/internal/logging"
	"github.com/OrmirUlaj/gaming-marketplace/internal/mykafka"
)

const publishTimeout = 5 * time.Second

// publish sends a domain event. Failures are logged and never fail the caller.
func publish(ctx context.Context, p mykafka.Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error",
			"topic", topic,
			"type", fmt.Sprint(event["type"]),
			"error", err,
		)
	}
}
