package model

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusCanceled, true},
		{StatusPending, StatusConfirmed, false},
		{StatusPaid, StatusConfirmed, true},
		{StatusPaid, StatusCanceled, true},
		{StatusPaid, StatusReady, false},
		{StatusConfirmed, StatusPreparing, true},
		{StatusConfirmed, StatusCanceled, false},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusCompleted, true},
		{StatusCompleted, StatusCanceled, false},
		{StatusCanceled, StatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{
		StatusPending, StatusPaid, StatusConfirmed, StatusPreparing,
		StatusReady, StatusCompleted, StatusCanceled,
	} {
		if !s.Valid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if OrderStatus("shipped").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}
