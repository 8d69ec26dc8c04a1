// Package config loads service settings from the environment through viper.
package config

import (
	"strings"
	"time"

	"storefront/internal/pricing"

	"github.com/spf13/viper"
)

// Config is the resolved service configuration.
type Config struct {
	AppPort string
	AppEnv  string

	DatabaseDriver string
	DatabaseDSN    string

	CartStorage   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CartTTL       time.Duration

	RabbitMQURL   string
	RabbitMQQueue string

	StripeSecretKey    string
	CheckoutSuccessURL string
	CheckoutCancelURL  string
	Currency           string

	AuthJWTSecret string

	CouponCheckDelay time.Duration
	Pricing          pricing.Rules
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// SetDefaults registers the default for every setting on v.
func SetDefaults(v *viper.Viper) {
	rules := pricing.DefaultRules()

	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:storefront.db?cache=shared")
	v.SetDefault("CART_STORAGE", "gorm")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CART_TTL", "720h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "storefront_events")
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success?session_id={CHECKOUT_SESSION_ID}")
	v.SetDefault("CHECKOUT_CANCEL_URL", "http://localhost:3000/cart")
	v.SetDefault("CURRENCY", "USD")
	v.SetDefault("AUTH_JWT_SECRET", "")
	v.SetDefault("COUPON_CHECK_DELAY", "500ms")
	v.SetDefault("FREE_SHIPPING_THRESHOLD", rules.FreeShippingThreshold)
	v.SetDefault("PRIORITY_SHIPPING_THRESHOLD", rules.PriorityShippingThreshold)
	v.SetDefault("FLAT_SHIPPING_RATE", rules.FlatShippingRate)
	v.SetDefault("TAX_RATE", rules.TaxRate)
}

// Load reads configuration from environment variables, falling back to defaults.
func Load() Config {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper resolves a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	return Config{
		AppPort:            v.GetString("APP_PORT"),
		AppEnv:             v.GetString("APP_ENV"),
		DatabaseDriver:     strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:        v.GetString("DATABASE_DSN"),
		CartStorage:        strings.ToLower(v.GetString("CART_STORAGE")),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		CartTTL:            v.GetDuration("CART_TTL"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		RabbitMQQueue:      v.GetString("RABBITMQ_QUEUE"),
		StripeSecretKey:    v.GetString("STRIPE_SECRET_KEY"),
		CheckoutSuccessURL: v.GetString("CHECKOUT_SUCCESS_URL"),
		CheckoutCancelURL:  v.GetString("CHECKOUT_CANCEL_URL"),
		Currency:           strings.ToUpper(v.GetString("CURRENCY")),
		AuthJWTSecret:      v.GetString("AUTH_JWT_SECRET"),
		CouponCheckDelay:   v.GetDuration("COUPON_CHECK_DELAY"),
		Pricing: pricing.Rules{
			FreeShippingThreshold:     v.GetFloat64("FREE_SHIPPING_THRESHOLD"),
			PriorityShippingThreshold: v.GetFloat64("PRIORITY_SHIPPING_THRESHOLD"),
			FlatShippingRate:          v.GetFloat64("FLAT_SHIPPING_RATE"),
			TaxRate:                   v.GetFloat64("TAX_RATE"),
		},
	}
}
