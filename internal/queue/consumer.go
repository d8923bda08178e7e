package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"

	"shopcart/internal/model"
)

// Consumer drives fulfilment off the order-placed topic: once an order is
// confirmed, processing it moves the order to completed. Duplicate
// deliveries are harmless because the status transition only fires once.
type Consumer struct {
	r  *kafka.Reader
	db *gorm.DB
}

func NewConsumer(brokers []string, topic, groupID string, db *gorm.DB) *Consumer {
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1e3,
			MaxBytes: 1e6,
		}),
		db: db,
	}
}

func (c *Consumer) Close() error { return c.r.Close() }

func (c *Consumer) Run(ctx context.Context) {
	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			return // ctx cancelled or connection gone
		}

		var msg OrderPlacedMessage
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			log.Printf("consumer unmarshal: %v", err)
			continue
		}
		if err := msg.Validate(); err != nil {
			log.Printf("consumer drop message for %q: %v", msg.OrderNo, err)
			continue
		}

		if err := c.fulfil(ctx, msg); err != nil {
			log.Printf("consumer fulfil %s: %v", msg.OrderNo, err)
		}
	}
}

// fulfil marks a confirmed order completed. The conditional update makes the
// operation idempotent: replays and not-yet-confirmed orders affect no rows.
func (c *Consumer) fulfil(ctx context.Context, msg OrderPlacedMessage) error {
	res := c.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("order_no = ? AND status_id = ?", msg.OrderNo, model.StatusConfirmed).
		Update("status_id", model.StatusCompleted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Printf("consumer skip %s: not in confirmed state", msg.OrderNo)
	}
	return nil
}
