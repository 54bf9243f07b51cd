package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/events"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/logger"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/payment"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/pricing"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/promo"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/repo"
	"go.uber.org/zap"
)

var (
	ErrEmptyOrder          = errors.New("order must contain at least one item")
	ErrUnknownItem         = errors.New("unknown menu item")
	ErrItemUnavailable     = errors.New("menu item is not available")
	ErrMissingDestination  = errors.New("delivery orders require an address and coordinates")
	ErrDeliveryUnavailable = errors.New("address is outside the delivery range")
	ErrInvalidTransition   = errors.New("illegal order status transition")
	ErrNotCancelable       = errors.New("order can no longer be canceled")
)

// OrderService owns the checkout pipeline and the order lifecycle.
type OrderService struct {
	orders    repo.OrderRepository
	menu      repo.MenuRepository
	customers repo.CustomerRepository
	loyalty   *LoyaltyService
	delivery  *DeliveryService
	promos    *promo.Validator
	payments  payment.Client
	publisher events.Publisher
	params    pricing.Params
	currency  string
}

func NewOrderService(
	orders repo.OrderRepository,
	menu repo.MenuRepository,
	customers repo.CustomerRepository,
	loyalty *LoyaltyService,
	delivery *DeliveryService,
	promos *promo.Validator,
	payments payment.Client,
	publisher events.Publisher,
	params pricing.Params,
	currency string,
) *OrderService {
	return &OrderService{
		orders:    orders,
		menu:      menu,
		customers: customers,
		loyalty:   loyalty,
		delivery:  delivery,
		promos:    promos,
		payments:  payments,
		publisher: publisher,
		params:    params,
		currency:  currency,
	}
}

type CheckoutLine struct {
	ItemID    string           `json:"item_id" binding:"required"`
	Quantity  float64          `json:"quantity" binding:"required,gt=0"`
	Modifiers []model.Modifier `json:"modifiers"`
	Note      string           `json:"note"`
}

type CheckoutRequest struct {
	CustomerName  string                `json:"customer_name" binding:"required"`
	CustomerEmail string                `json:"customer_email" binding:"required,email"`
	CustomerPhone string                `json:"customer_phone"`
	Fulfillment   model.FulfillmentType `json:"fulfillment" binding:"required,oneof=pickup delivery"`
	Address       string                `json:"address"`
	Lat           float64               `json:"lat"`
	Lon           float64               `json:"lon"`
	Lines         []CheckoutLine        `json:"lines" binding:"required"`
	PromoCode     string                `json:"promo_code"`
	StarsToRedeem int64                 `json:"stars_to_redeem"`
	Tip           pricing.Tip           `json:"tip"`
	ReferredBy    string                `json:"referred_by"`
	// IdempotencyKey comes from the Idempotency-Key header; replays
	// return the original order.
	IdempotencyKey string `json:"-"`
}

// CartQuoteRequest prices a cart without creating anything.
type CartQuoteRequest struct {
	Fulfillment   model.FulfillmentType `json:"fulfillment" binding:"required,oneof=pickup delivery"`
	Lat           float64               `json:"lat"`
	Lon           float64               `json:"lon"`
	Lines         []CheckoutLine        `json:"lines" binding:"required"`
	PromoCode     string                `json:"promo_code"`
	StarsToRedeem int64                 `json:"stars_to_redeem"`
	Tip           pricing.Tip           `json:"tip"`
}

// CheckoutResult pairs the created order with the client secret the
// storefront needs to confirm the card payment.
type CheckoutResult struct {
	Order               *model.Order `json:"order"`
	PaymentClientSecret string       `json:"payment_client_secret,omitempty"`
}

// resolveLines validates requested lines against the live menu and
// freezes current names and prices onto cart lines.
func (s *OrderService) resolveLines(ctx context.Context, reqLines []CheckoutLine) ([]model.CartLine, error) {
	if len(reqLines) == 0 {
		return nil, ErrEmptyOrder
	}

	ids := make([]string, 0, len(reqLines))
	for _, l := range reqLines {
		ids = append(ids, l.ItemID)
	}
	items, err := s.menu.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]model.CartLine, 0, len(reqLines))
	for _, l := range reqLines {
		item, ok := items[l.ItemID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownItem, l.ItemID)
		}
		if !item.Available {
			return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
		}
		lines = append(lines, model.CartLine{
			ItemID:         item.ID,
			Name:           item.Name,
			UnitPriceCents: item.PriceCents,
			Unit:           item.Unit,
			Quantity:       l.Quantity,
			Modifiers:      l.Modifiers,
			Note:           l.Note,
		})
	}
	return lines, nil
}

// price runs the shared quoting path: resolve lines, promo, loyalty
// redemption, delivery, then the totals engine. The requested star
// spend is clamped so its discount never exceeds the subtotal left
// after the promo; the stars actually applied are returned so checkout
// debits exactly what the quote used.
func (s *OrderService) price(ctx context.Context, fulfillment model.FulfillmentType, lat, lon float64, reqLines []CheckoutLine, promoCode string, stars int64, tip pricing.Tip) ([]model.CartLine, model.Totals, int64, error) {
	lines, err := s.resolveLines(ctx, reqLines)
	if err != nil {
		return nil, model.Totals{}, 0, err
	}

	subtotal, err := pricing.Subtotal(lines)
	if err != nil {
		return nil, model.Totals{}, 0, err
	}

	var discount int64
	if promoCode != "" {
		d, err := s.promos.Validate(ctx, promoCode, subtotal)
		if err != nil {
			return nil, model.Totals{}, 0, err
		}
		discount += d
	}
	var starsApplied int64
	if stars > 0 {
		starsApplied = s.loyalty.MaxRedeemableStars(stars, subtotal-discount)
		discount += s.loyalty.RedeemDiscountCents(starsApplied)
	}

	var deliveryFee int64
	if fulfillment == model.FulfillmentDelivery {
		if lat == 0 && lon == 0 {
			return nil, model.Totals{}, 0, ErrMissingDestination
		}
		quote, err := s.delivery.Quote(ctx, lat, lon)
		if err != nil {
			return nil, model.Totals{}, 0, err
		}
		if !quote.OK {
			return nil, model.Totals{}, 0, fmt.Errorf("%w (%s)", ErrDeliveryUnavailable, quote.Reason)
		}
		deliveryFee = quote.FeeCents
	}

	totals, err := pricing.Compute(s.params, pricing.Input{
		Lines:            lines,
		DiscountCents:    discount,
		DeliveryFeeCents: deliveryFee,
		Tip:              tip,
	})
	if err != nil {
		return nil, model.Totals{}, 0, err
	}
	return lines, totals, starsApplied, nil
}

// QuoteCart prices a cart for display while the customer is still
// shopping.
func (s *OrderService) QuoteCart(ctx context.Context, req CartQuoteRequest) (model.Totals, error) {
	_, totals, _, err := s.price(ctx, req.Fulfillment, req.Lat, req.Lon, req.Lines, req.PromoCode, req.StarsToRedeem, req.Tip)
	return totals, err
}

// Checkout validates and prices the cart, opens a payment intent at the
// gateway, persists the pending order, and announces it.
func (s *OrderService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	log := logger.FromContext(ctx)

	if req.IdempotencyKey != "" {
		existing, err := s.orders.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			log.Info("checkout replayed", zap.String("order_id", existing.ID))
			return &CheckoutResult{Order: existing}, nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
	}

	if req.Fulfillment != model.FulfillmentPickup && req.Fulfillment != model.FulfillmentDelivery {
		return nil, fmt.Errorf("unknown fulfillment type %q", req.Fulfillment)
	}
	if req.Fulfillment == model.FulfillmentDelivery && req.Address == "" {
		return nil, ErrMissingDestination
	}

	lines, totals, starsRedeemed, err := s.price(ctx, req.Fulfillment, req.Lat, req.Lon, req.Lines, req.PromoCode, req.StarsToRedeem, req.Tip)
	if err != nil {
		return nil, err
	}

	customer, err := s.customers.UpsertByEmail(ctx, req.CustomerName, req.CustomerEmail, req.CustomerPhone)
	if err != nil {
		log.Error("postgres: failed to upsert customer", zap.Error(err))
		return nil, err
	}

	if _, err := s.loyalty.GetOrCreateAccount(ctx, customer.ID, req.ReferredBy); err != nil {
		log.Error("failed to ensure loyalty account", zap.Error(err))
		return nil, err
	}

	orderID := uuid.New().String()

	if starsRedeemed > 0 {
		if err := s.loyalty.Redeem(ctx, customer.ID, starsRedeemed, orderID); err != nil {
			return nil, err
		}
	}

	intent, err := s.payments.CreateIntent(ctx, payment.CreateIntentRequest{
		AmountCents:    totals.TotalCents,
		Currency:       s.currency,
		IdempotencyKey: req.IdempotencyKey,
		Metadata:       map[string]string{"order_id": orderID},
	})
	if err != nil {
		s.refundStars(ctx, customer.ID, starsRedeemed, orderID)
		log.Error("gateway: failed to create payment intent", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	order := &model.Order{
		ID:              orderID,
		CustomerID:      customer.ID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		Fulfillment:     req.Fulfillment,
		Address:         req.Address,
		Lat:             req.Lat,
		Lon:             req.Lon,
		Lines:           lines,
		Totals:          totals,
		PromoCode:       req.PromoCode,
		StarsRedeemed:   starsRedeemed,
		PaymentIntentID: intent.ID,
		IdempotencyKey:  req.IdempotencyKey,
		Status:          model.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.refundStars(ctx, customer.ID, starsRedeemed, orderID)
		if cancelErr := s.payments.CancelIntent(ctx, intent.ID); cancelErr != nil {
			log.Warn("gateway: failed to cancel orphaned intent", zap.Error(cancelErr))
		}
		log.Error("postgres: failed to create order", zap.Error(err))
		return nil, err
	}

	s.publish(ctx, events.OrderCreatedChannel, order)
	log.Info("order created",
		zap.String("order_id", order.ID),
		zap.Int64("total_cents", totals.TotalCents),
		zap.String("fulfillment", string(order.Fulfillment)))

	return &CheckoutResult{Order: order, PaymentClientSecret: intent.ClientSecret}, nil
}

func (s *OrderService) refundStars(ctx context.Context, customerID string, stars int64, orderID string) {
	if stars <= 0 {
		return
	}
	if err := s.loyalty.Refund(ctx, customerID, stars, orderID); err != nil {
		logger.FromContext(ctx).Error("failed to refund redeemed stars",
			zap.String("customer_id", customerID), zap.Error(err))
	}
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error) {
	return s.orders.List(ctx, status, limit, offset)
}

// MarkPaid is driven by the gateway webhook. Duplicate notifications
// for an already-paid order are absorbed.
func (s *OrderService) MarkPaid(ctx context.Context, intentID string) (*model.Order, error) {
	log := logger.FromContext(ctx)

	order, err := s.orders.GetByPaymentIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.StatusPending {
		log.Info("payment webhook replayed",
			zap.String("order_id", order.ID), zap.String("status", string(order.Status)))
		return order, nil
	}

	if err := s.transition(ctx, order, model.StatusPaid); err != nil {
		// A concurrent delivery of the same webhook won the transition;
		// only the winner may publish.
		if errors.Is(err, repo.ErrStatusConflict) {
			log.Info("payment webhook replayed", zap.String("order_id", order.ID))
			return s.orders.GetByID(ctx, order.ID)
		}
		return nil, err
	}

	s.publish(ctx, events.OrderPaidChannel, order)
	log.Info("order paid", zap.String("order_id", order.ID))
	return order, nil
}

// ConfirmPaidOrder is called by the event consumer once payment lands.
func (s *OrderService) ConfirmPaidOrder(ctx context.Context, orderID string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != model.StatusPaid {
		return nil
	}
	if err := s.transition(ctx, order, model.StatusConfirmed); err != nil {
		if errors.Is(err, repo.ErrStatusConflict) {
			return nil
		}
		return err
	}
	s.publish(ctx, events.OrderStatusChangedChannel, order)
	return nil
}

// UpdateStatus moves an order along the lifecycle (admin surface).
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	log := logger.FromContext(ctx)

	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, order, status); err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderStatusChangedChannel, order)
	log.Info("order status updated",
		zap.String("order_id", id), zap.String("status", string(status)))
	return order, nil
}

// Cancel voids a pending or paid order, releases the payment intent
// when it has not been captured, and returns redeemed stars.
func (s *OrderService) Cancel(ctx context.Context, id string) (*model.Order, error) {
	log := logger.FromContext(ctx)

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(model.StatusCanceled) {
		return nil, fmt.Errorf("%w: status %s", ErrNotCancelable, order.Status)
	}

	wasPending := order.Status == model.StatusPending
	if err := s.transition(ctx, order, model.StatusCanceled); err != nil {
		return nil, err
	}

	if wasPending && order.PaymentIntentID != "" {
		if err := s.payments.CancelIntent(ctx, order.PaymentIntentID); err != nil {
			log.Warn("gateway: failed to cancel intent", zap.Error(err))
		}
	}
	s.refundStars(ctx, order.CustomerID, order.StarsRedeemed, order.ID)

	s.publish(ctx, events.OrderStatusChangedChannel, order)
	log.Info("order canceled", zap.String("order_id", id))
	return order, nil
}

func (s *OrderService) transition(ctx context.Context, order *model.Order, next model.OrderStatus) error {
	if !order.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}
	prev := order.Status
	order.Status = next
	order.UpdatedAt = time.Now()
	if err := s.orders.UpdateStatus(ctx, order, prev); err != nil {
		order.Status = prev
		if !errors.Is(err, repo.ErrStatusConflict) {
			logger.FromContext(ctx).Error("postgres: failed to update order status",
				zap.String("order_id", order.ID), zap.Error(err))
		}
		return err
	}
	return nil
}

func (s *OrderService) publish(ctx context.Context, channel string, order *model.Order) {
	if s.publisher == nil {
		return
	}
	log := logger.FromContext(ctx)
	if err := s.publisher.Publish(ctx, channel, order); err != nil {
		log.Error("failed to publish event", zap.String("channel", channel), zap.Error(err))
		return
	}
	log.Info("event published", zap.String("channel", channel), zap.String("order_id", order.ID))
}
