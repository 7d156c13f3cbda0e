package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Delivery fees are flat per vendor group, in minor currency units.
// A vendor serving the buyer's zone charges the reduced tier.
//
// Env overrides:
// - DELIVERY_FEE_OUT_OF_ZONE (default 5000)
// - DELIVERY_FEE_IN_ZONE     (default 2500)
func DeliveryFeeOutOfZone() decimal.Decimal {
	return decimalFromEnv("DELIVERY_FEE_OUT_OF_ZONE", 5000)
}

func DeliveryFeeInZone() decimal.Decimal {
	return decimalFromEnv("DELIVERY_FEE_IN_ZONE", 2500)
}

// DefaultCommissionRate is the platform's cut of vendor revenue, as a
// percentage, applied when a vendor has no rate of its own.
//
// Env override: DEFAULT_COMMISSION_RATE (default 10)
func DefaultCommissionRate() decimal.Decimal {
	return decimalFromEnv("DEFAULT_COMMISSION_RATE", 10)
}

// NotificationDirectProcessing runs the in-process notification dispatcher
// instead of (or as a safety net alongside) Pub/Sub delivery.
//
// Env: NOTIFY_DIRECT_PROCESSING=true|false (default true when Pub/Sub is unset)
func NotificationDirectProcessing() bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv("NOTIFY_DIRECT_PROCESSING")))
	if val == "true" {
		return true
	}
	if val == "false" {
		return false
	}
	return os.Getenv("PUBSUB_PROJECT_ID") == "" && os.Getenv("GOOGLE_CLOUD_PROJECT") == ""
}

func decimalFromEnv(key string, def int64) decimal.Decimal {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return decimal.NewFromInt(def)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return decimal.NewFromInt(def)
	}
	return decimal.NewFromInt(n)
}
