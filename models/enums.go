package models

import (
	"sort"
	"strings"

	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
)

type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleVendor Role = "VENDOR"
	RoleStaff  Role = "STAFF"
	RoleAdmin  Role = "ADMIN"
)

// Elevated roles may transition any order; buyers may only cancel their own
// pending orders. Credential verification happens upstream; the engine
// trusts the role it is handed.
func (r Role) IsElevated() bool {
	return r == RoleStaff || r == RoleAdmin
}

func RoleFromString(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleBuyer:
		return RoleBuyer, nil
	case RoleVendor:
		return RoleVendor, nil
	case RoleStaff:
		return RoleStaff, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", utils.NewValidation("invalid role %q", s)
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// orderTransitions is the single source of truth for the order status
// machine. DELIVERED and CANCELLED are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// AllowedTargets returns the reachable statuses in a stable order.
func (s OrderStatus) AllowedTargets() []OrderStatus {
	targets := make([]OrderStatus, len(orderTransitions[s]))
	copy(targets, orderTransitions[s])
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	return targets
}

func OrderStatusFromString(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := orderTransitions[status]; !ok {
		return "", utils.NewValidation("invalid order status %q", s)
	}
	return status, nil
}

// OrderPayoutStatus tracks whether an order's revenue has been disbursed
// to its vendor.
type OrderPayoutStatus string

const (
	OrderPayoutStatusUnpaid  OrderPayoutStatus = "UNPAID"
	OrderPayoutStatusPending OrderPayoutStatus = "PENDING"
	OrderPayoutStatusPaid    OrderPayoutStatus = "PAID"
)

type PayoutState string

const (
	PayoutStatePending    PayoutState = "PENDING"
	PayoutStateProcessing PayoutState = "PROCESSING"
	PayoutStateCompleted  PayoutState = "COMPLETED"
	PayoutStateFailed     PayoutState = "FAILED"
	PayoutStateCancelled  PayoutState = "CANCELLED"
)

var payoutTransitions = map[PayoutState][]PayoutState{
	PayoutStatePending:    {PayoutStateProcessing, PayoutStateFailed, PayoutStateCancelled},
	PayoutStateProcessing: {PayoutStateCompleted, PayoutStateFailed, PayoutStateCancelled},
	PayoutStateCompleted:  {},
	PayoutStateFailed:     {},
	PayoutStateCancelled:  {},
}

func (s PayoutState) CanTransitionTo(target PayoutState) bool {
	for _, allowed := range payoutTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s PayoutState) IsTerminal() bool {
	return len(payoutTransitions[s]) == 0
}

type StockChangeReason string

const (
	StockChangeReasonSale         StockChangeReason = "SALE"
	StockChangeReasonCancellation StockChangeReason = "CANCELLATION"
	StockChangeReasonAdjustment   StockChangeReason = "ADJUSTMENT"
	StockChangeReasonReturn       StockChangeReason = "RETURN"
)

type PromotionType string

const (
	PromotionTypePercentage PromotionType = "PERCENTAGE"
	PromotionTypeFixed      PromotionType = "FIXED"
	PromotionTypeBuyXGetY   PromotionType = "BUY_X_GET_Y"
	PromotionTypeBundle     PromotionType = "BUNDLE"
)

func PromotionTypeFromString(s string) (PromotionType, error) {
	switch PromotionType(strings.ToUpper(strings.TrimSpace(s))) {
	case PromotionTypePercentage:
		return PromotionTypePercentage, nil
	case PromotionTypeFixed:
		return PromotionTypeFixed, nil
	case PromotionTypeBuyXGetY:
		return PromotionTypeBuyXGetY, nil
	case PromotionTypeBundle:
		return PromotionTypeBundle, nil
	}
	return "", utils.NewValidation("invalid promotion type %q", s)
}

type PaymentMethod string

const (
	// The platform settles cash on delivery; no gateway integration.
	PaymentMethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
)

type NotificationEventType string

const (
	NotificationEventOrderCreated       NotificationEventType = "ORDER_CREATED"
	NotificationEventOrderStatusChanged NotificationEventType = "ORDER_STATUS_CHANGED"
	NotificationEventPayoutCompleted    NotificationEventType = "PAYOUT_COMPLETED"
)
