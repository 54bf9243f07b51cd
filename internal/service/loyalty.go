package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/logger"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/repo"
	"go.uber.org/zap"
)

var ErrInsufficientStars = repo.ErrInsufficientStars

// LoyaltyRates are the store's star economics.
type LoyaltyRates struct {
	// EarnRate is stars per whole dollar of paid order total.
	EarnRate           int64
	RedeemCentsPerStar int64
	ReferralBonusStars int64
}

// LoyaltyService maintains the star ledger: accrual on paid orders,
// redemption at checkout, and one-shot referral bonuses.
type LoyaltyService struct {
	repo  repo.LoyaltyRepository
	rates LoyaltyRates
}

func NewLoyaltyService(loyaltyRepo repo.LoyaltyRepository, rates LoyaltyRates) *LoyaltyService {
	return &LoyaltyService{repo: loyaltyRepo, rates: rates}
}

// GetOrCreateAccount fetches the customer's account, creating it with a
// fresh referral code on first touch. referredBy is only honored at
// account creation; an existing account's referrer is immutable.
func (s *LoyaltyService) GetOrCreateAccount(ctx context.Context, customerID, referredBy string) (*model.LoyaltyAccount, error) {
	account, err := s.repo.GetAccount(ctx, customerID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	account = &model.LoyaltyAccount{
		CustomerID:   customerID,
		Balance:      0,
		ReferralCode: newReferralCode(),
		ReferredBy:   referredBy,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Profile returns the account plus its ledger history.
func (s *LoyaltyService) Profile(ctx context.Context, customerID string) (*model.LoyaltyAccount, []model.LoyaltyEvent, error) {
	account, err := s.repo.GetAccount(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	events, err := s.repo.ListEvents(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	return account, events, nil
}

// RedeemDiscountCents converts a star spend into a checkout discount.
func (s *LoyaltyService) RedeemDiscountCents(stars int64) int64 {
	if stars <= 0 {
		return 0
	}
	return stars * s.rates.RedeemCentsPerStar
}

// MaxRedeemableStars caps a requested star spend so its discount never
// exceeds the charge it is applied against; the excess stays on the
// customer's balance.
func (s *LoyaltyService) MaxRedeemableStars(stars, remainingCents int64) int64 {
	if stars <= 0 || s.rates.RedeemCentsPerStar <= 0 {
		return 0
	}
	if max := remainingCents / s.rates.RedeemCentsPerStar; stars > max {
		stars = max
	}
	if stars < 0 {
		return 0
	}
	return stars
}

// Redeem debits stars against an order. Fails with ErrInsufficientStars
// when the balance cannot cover the spend.
func (s *LoyaltyService) Redeem(ctx context.Context, customerID string, stars int64, orderID string) error {
	if stars <= 0 {
		return nil
	}
	return s.repo.Adjust(ctx, &model.LoyaltyEvent{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		Kind:       model.LoyaltyRedeem,
		Stars:      stars,
		OrderID:    orderID,
		CreatedAt:  time.Now(),
	}, -stars)
}

// Refund returns previously redeemed stars when an order is canceled.
func (s *LoyaltyService) Refund(ctx context.Context, customerID string, stars int64, orderID string) error {
	if stars <= 0 {
		return nil
	}
	return s.repo.Adjust(ctx, &model.LoyaltyEvent{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		Kind:       model.LoyaltyRefund,
		Stars:      stars,
		OrderID:    orderID,
		CreatedAt:  time.Now(),
	}, stars)
}

// AccrueForOrder settles the ledger for a paid order: earn stars on the
// total, and pay the referrer's bonus if this is the referred
// customer's first qualifying order.
func (s *LoyaltyService) AccrueForOrder(ctx context.Context, order *model.Order) error {
	log := logger.FromContext(ctx)

	account, err := s.GetOrCreateAccount(ctx, order.CustomerID, "")
	if err != nil {
		return err
	}

	earned := (order.Totals.TotalCents / 100) * s.rates.EarnRate
	if earned > 0 {
		err := s.repo.Adjust(ctx, &model.LoyaltyEvent{
			ID:         uuid.New().String(),
			CustomerID: order.CustomerID,
			Kind:       model.LoyaltyEarn,
			Stars:      earned,
			OrderID:    order.ID,
			CreatedAt:  time.Now(),
		}, earned)
		if err != nil {
			return err
		}
		log.Info("stars earned",
			zap.String("customer_id", order.CustomerID),
			zap.Int64("stars", earned),
			zap.String("order_id", order.ID))
	}

	if account.ReferredBy != "" && !account.ReferralCredited {
		if err := s.creditReferrer(ctx, account, order.ID); err != nil {
			log.Error("failed to credit referral bonus", zap.Error(err))
		}
	}
	return nil
}

func (s *LoyaltyService) creditReferrer(ctx context.Context, account *model.LoyaltyAccount, orderID string) error {
	// The flag flip is atomic; losing the race means someone else paid
	// the bonus already.
	credited, err := s.repo.MarkReferralCredited(ctx, account.CustomerID)
	if err != nil {
		return err
	}
	if !credited {
		return nil
	}

	referrer, err := s.repo.GetByReferralCode(ctx, account.ReferredBy)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Dangling referral code; the flag stays set so we never retry.
			return nil
		}
		return err
	}

	return s.repo.Adjust(ctx, &model.LoyaltyEvent{
		ID:         uuid.New().String(),
		CustomerID: referrer.CustomerID,
		Kind:       model.LoyaltyReferralBonus,
		Stars:      s.rates.ReferralBonusStars,
		OrderID:    orderID,
		CreatedAt:  time.Now(),
	}, s.rates.ReferralBonusStars)
}

func newReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}
