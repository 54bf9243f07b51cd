package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/notify"
	"go.uber.org/zap"
)

// OrderConfirmer moves a freshly paid order into the kitchen queue.
type OrderConfirmer interface {
	ConfirmPaidOrder(ctx context.Context, orderID string) error
}

// Accruer credits loyalty stars (and any referral bonus) for a paid order.
type Accruer interface {
	AccrueForOrder(ctx context.Context, order *model.Order) error
}

// Consumer reacts to order.paid: confirm the order, alert the admins,
// and settle the loyalty ledger.
type Consumer struct {
	client    *redis.Client
	confirmer OrderConfirmer
	accruer   Accruer
	notifier  notify.Notifier
	log       *zap.Logger
}

func NewConsumer(client *redis.Client, confirmer OrderConfirmer, accruer Accruer, notifier notify.Notifier, log *zap.Logger) *Consumer {
	return &Consumer{
		client:    client,
		confirmer: confirmer,
		accruer:   accruer,
		notifier:  notifier,
		log:       log,
	}
}

func (c *Consumer) Subscribe(ctx context.Context, channel string) {
	sub := c.client.Subscribe(ctx, channel)
	defer sub.Close()
	ch := sub.Channel()

	c.log.Info("subscribed", zap.String("channel", channel))

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Channel == OrderPaidChannel {
				c.handleOrderPaid(ctx, msg.Payload)
			}
		}
	}
}

func (c *Consumer) handleOrderPaid(ctx context.Context, payload string) {
	var order model.Order
	if err := json.Unmarshal([]byte(payload), &order); err != nil {
		c.log.Error("failed to unmarshal order", zap.Error(err))
		return
	}

	log := c.log.With(zap.String("order_id", order.ID))

	if c.confirmer != nil {
		if err := c.confirmer.ConfirmPaidOrder(ctx, order.ID); err != nil {
			log.Error("failed to confirm paid order", zap.Error(err))
		}
	}

	if c.accruer != nil {
		if err := c.accruer.AccrueForOrder(ctx, &order); err != nil {
			log.Error("failed to accrue loyalty stars", zap.Error(err))
		}
	}

	if c.notifier != nil {
		if err := c.notifier.OrderPaid(ctx, &order); err != nil {
			log.Error("failed to send admin push", zap.Error(err))
		}
	}
}
