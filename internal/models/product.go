package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a product in the storefront catalog.
type Product struct {
	ID          string   `json:"id" gorm:"primaryKey;type:varchar(64)" validate:"required"`
	Name        string   `json:"name" validate:"required,min=3,max=100"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Image       string   `json:"image"`
	Images      []string `json:"images" gorm:"serializer:json"`
	Category    string   `json:"category"`
	Sizes       []string `json:"sizes" gorm:"serializer:json"` // empty for unsized goods
	Colors      []string `json:"colors" gorm:"serializer:json"`
	Active      bool     `json:"active"`

	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// HasSize reports whether size is one of the sizes the product is offered in.
func (p Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// Sized reports whether the product comes in sizes.
func (p Product) Sized() bool {
	return len(p.Sizes) > 0
}
