package config_test

import (
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/pricing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	cfg := config.FromViper(v)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "gorm", cfg.CartStorage)
	assert.Equal(t, 500*time.Millisecond, cfg.CouponCheckDelay)
	assert.Equal(t, 720*time.Hour, cfg.CartTTL)
	assert.Equal(t, pricing.DefaultRules(), cfg.Pricing)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("CART_STORAGE", "REDIS")
	t.Setenv("TAX_RATE", "0.05")
	t.Setenv("COUPON_CHECK_DELAY", "0s")
	t.Setenv("CURRENCY", "usd")

	cfg := config.Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "redis", cfg.CartStorage)
	assert.Equal(t, 0.05, cfg.Pricing.TaxRate)
	assert.Equal(t, time.Duration(0), cfg.CouponCheckDelay)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, 20.0, cfg.Pricing.FreeShippingThreshold)
}
