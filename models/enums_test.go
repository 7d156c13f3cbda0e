package models_test

import (
	"testing"

	"github.com/xmustafa5/b2b-exommmerce-sub003/models"
)

func TestOrderStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to models.OrderStatus
	}{
		{models.OrderStatusPending, models.OrderStatusConfirmed},
		{models.OrderStatusPending, models.OrderStatusCancelled},
		{models.OrderStatusConfirmed, models.OrderStatusProcessing},
		{models.OrderStatusConfirmed, models.OrderStatusCancelled},
		{models.OrderStatusProcessing, models.OrderStatusShipped},
		{models.OrderStatusProcessing, models.OrderStatusCancelled},
		{models.OrderStatusShipped, models.OrderStatusDelivered},
		{models.OrderStatusShipped, models.OrderStatusCancelled},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct {
		from, to models.OrderStatus
	}{
		{models.OrderStatusDelivered, models.OrderStatusPending},
		{models.OrderStatusDelivered, models.OrderStatusCancelled},
		{models.OrderStatusCancelled, models.OrderStatusPending},
		{models.OrderStatusCancelled, models.OrderStatusConfirmed},
		{models.OrderStatusPending, models.OrderStatusShipped},
		{models.OrderStatusPending, models.OrderStatusDelivered},
		{models.OrderStatusConfirmed, models.OrderStatusConfirmed},
		{models.OrderStatusShipped, models.OrderStatusConfirmed},
	}
	for _, tc := range forbidden {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	if !models.OrderStatusDelivered.IsTerminal() {
		t.Error("DELIVERED must be terminal")
	}
	if !models.OrderStatusCancelled.IsTerminal() {
		t.Error("CANCELLED must be terminal")
	}
	for _, s := range []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusConfirmed,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
	} {
		if s.IsTerminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}

func TestOrderStatusFromString(t *testing.T) {
	got, err := models.OrderStatusFromString(" shipped ")
	if err != nil {
		t.Fatalf("OrderStatusFromString: %v", err)
	}
	if got != models.OrderStatusShipped {
		t.Fatalf("expected SHIPPED, got %s", got)
	}
	if _, err := models.OrderStatusFromString("DISPATCHED"); err == nil {
		t.Fatal("unknown status must be rejected")
	}
}

func TestPayoutStateTransitions(t *testing.T) {
	if !models.PayoutStatePending.CanTransitionTo(models.PayoutStateProcessing) {
		t.Error("PENDING -> PROCESSING should be allowed")
	}
	if !models.PayoutStateProcessing.CanTransitionTo(models.PayoutStateCompleted) {
		t.Error("PROCESSING -> COMPLETED should be allowed")
	}
	if models.PayoutStatePending.CanTransitionTo(models.PayoutStateCompleted) {
		t.Error("PENDING -> COMPLETED must go through PROCESSING")
	}
	if models.PayoutStateCompleted.CanTransitionTo(models.PayoutStatePending) {
		t.Error("COMPLETED is terminal")
	}
	if !models.PayoutStateFailed.IsTerminal() || !models.PayoutStateCancelled.IsTerminal() {
		t.Error("FAILED and CANCELLED are terminal")
	}
}

func TestRoleElevation(t *testing.T) {
	if !models.RoleStaff.IsElevated() || !models.RoleAdmin.IsElevated() {
		t.Error("STAFF and ADMIN are elevated")
	}
	if models.RoleBuyer.IsElevated() || models.RoleVendor.IsElevated() {
		t.Error("BUYER and VENDOR are not elevated")
	}
}
