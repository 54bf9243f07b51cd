package repo

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
)

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func sampleOrder() *model.Order {
	return &model.Order{
		ID:            "order-1",
		CustomerID:    "cust-1",
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Fulfillment:   model.FulfillmentPickup,
		Lines: []model.CartLine{
			{ItemID: "croissant", Name: "Croissant", UnitPriceCents: 450, Unit: model.UnitEach, Quantity: 2},
		},
		Totals:          model.Totals{SubtotalCents: 900, TaxCents: 90, TotalCents: 990},
		PaymentIntentID: "pi_1",
		Status:          model.StatusPending,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

func orderRows(t *testing.T, order *model.Order) *sqlmock.Rows {
	t.Helper()
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		t.Fatal(err)
	}
	return sqlmock.NewRows([]string{
		"id", "customer_id", "customer_name", "customer_email", "customer_phone",
		"fulfillment", "address", "lat", "lon", "lines",
		"subtotal_cents", "discount_cents", "tax_cents", "service_fee_cents",
		"delivery_fee_cents", "tip_cents", "total_cents",
		"promo_code", "stars_redeemed", "payment_intent_id", "idempotency_key",
		"status", "created_at", "updated_at",
	}).AddRow(
		order.ID, order.CustomerID, order.CustomerName, order.CustomerEmail, order.CustomerPhone,
		order.Fulfillment, order.Address, order.Lat, order.Lon, lines,
		order.Totals.SubtotalCents, order.Totals.DiscountCents, order.Totals.TaxCents,
		order.Totals.ServiceFeeCents, order.Totals.DeliveryFeeCents, order.Totals.TipCents,
		order.Totals.TotalCents,
		order.PromoCode, order.StarsRedeemed, order.PaymentIntentID, order.IdempotencyKey,
		order.Status, order.CreatedAt, order.UpdatedAt,
	)
}

func TestOrderCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(anyArgs(24)...).
		WillReturnResult(sqlmock.NewResult(1, 1))

	r := NewPostgresOrderRepository(db)
	if err := r.Create(context.Background(), sampleOrder()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestOrderGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	want := sampleOrder()
	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id").
		WithArgs("order-1").
		WillReturnRows(orderRows(t, want))

	r := NewPostgresOrderRepository(db)
	got, err := r.GetByID(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != want.ID {
		t.Errorf("expected id %s, got %s", want.ID, got.ID)
	}
	if len(got.Lines) != 1 || got.Lines[0].ItemID != "croissant" {
		t.Errorf("lines did not round-trip: %+v", got.Lines)
	}
	if got.Totals.TotalCents != 990 {
		t.Errorf("expected total 990, got %d", got.Totals.TotalCents)
	}
}

func TestOrderGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	r := NewPostgresOrderRepository(db)
	_, err = r.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOrderUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("order-1", string(model.StatusPaid), sqlmock.AnyArg(), string(model.StatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewPostgresOrderRepository(db)
	order := sampleOrder()
	order.Status = model.StatusPaid
	if err := r.UpdateStatus(context.Background(), order, model.StatusPending); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestOrderUpdateStatusNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(anyArgs(4)...).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("order-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	r := NewPostgresOrderRepository(db)
	order := sampleOrder()
	order.Status = model.StatusPaid
	if err := r.UpdateStatus(context.Background(), order, model.StatusPending); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOrderUpdateStatusConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	// Zero rows but the order exists: another writer moved it first.
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(anyArgs(4)...).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("order-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	r := NewPostgresOrderRepository(db)
	order := sampleOrder()
	order.Status = model.StatusPaid
	if err := r.UpdateStatus(context.Background(), order, model.StatusPending); !errors.Is(err, ErrStatusConflict) {
		t.Errorf("expected ErrStatusConflict, got %v", err)
	}
}

func TestOrderList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE status").
		WithArgs(string(model.StatusPaid), 20, 0).
		WillReturnRows(orderRows(t, sampleOrder()))

	r := NewPostgresOrderRepository(db)
	orders, err := r.List(context.Background(), model.StatusPaid, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 1 {
		t.Errorf("expected 1 order, got %d", len(orders))
	}
}

func TestLoyaltyAdjustInsufficient(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE loyalty_accounts SET balance").
		WithArgs("cust-1", int64(-50)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("cust-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	r := NewPostgresLoyaltyRepository(db)
	err = r.Adjust(context.Background(), &model.LoyaltyEvent{
		ID:         "evt-1",
		CustomerID: "cust-1",
		Kind:       model.LoyaltyRedeem,
		Stars:      50,
		CreatedAt:  time.Now(),
	}, -50)
	if !errors.Is(err, ErrInsufficientStars) {
		t.Errorf("expected ErrInsufficientStars, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestLoyaltyAdjustCommitsEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE loyalty_accounts SET balance").
		WithArgs("cust-1", int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO loyalty_events").
		WithArgs(anyArgs(6)...).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	r := NewPostgresLoyaltyRepository(db)
	err = r.Adjust(context.Background(), &model.LoyaltyEvent{
		ID:         "evt-1",
		CustomerID: "cust-1",
		Kind:       model.LoyaltyEarn,
		Stars:      10,
		OrderID:    "order-1",
		CreatedAt:  time.Now(),
	}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
