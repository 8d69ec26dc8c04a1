package services_test

import (
	"testing"

	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestValidUSPhone(t *testing.T) {
	for phone, want := range map[string]bool{
		"2125550147":      true,
		"(212) 555-0147":  true,
		"+1 212 555 0147": true,
		"12125550147":     true,
		"555-0147":        false,
		"22125550147":     false,
		"":                false,
	} {
		assert.Equal(t, want, services.ValidUSPhone(phone), phone)
	}
}

func TestValidator_AddressRules(t *testing.T) {
	v := services.NewValidator()
	type form struct {
		Zip   string `json:"zip" validate:"us_zip"`
		State string `json:"state" validate:"us_state"`
	}

	assert.NoError(t, v.Struct(form{Zip: "10001", State: "NY"}))
	assert.NoError(t, v.Struct(form{Zip: "10001-1234", State: "ny"}))

	fields := services.FieldErrors(v.Struct(form{Zip: "ABCDE", State: "New York"}))
	assert.Equal(t, map[string]string{
		"zip":   "must be a 5-digit ZIP code",
		"state": "must be a 2-letter state code",
	}, fields)

	assert.Nil(t, services.FieldErrors(nil))
}
