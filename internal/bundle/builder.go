package bundle

import (
	"fmt"
	"strings"

	"storefront/internal/models"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var customBundleNamespace = uuid.MustParse("6f1c4e0a-9d3b-5b8e-a2f4-3c7d9e1b0a55")

// Builder assembles a custom tee bundle slot by slot.
type Builder struct {
	catalog *Catalog
	count   int
	slots   []models.TeeSlot
}

// NewBuilder starts a custom bundle with count empty slots.
func (c *Catalog) NewBuilder(count int) (*Builder, error) {
	if _, ok := c.teePrices[count]; !ok {
		return nil, fmt.Errorf("%d: %w", count, ErrInvalidTeeCount)
	}
	return &Builder{catalog: c, count: count, slots: make([]models.TeeSlot, count)}, nil
}

// Slots returns a copy of the current selections.
func (b *Builder) Slots() []models.TeeSlot {
	return append([]models.TeeSlot(nil), b.slots...)
}

// SetVariant picks the garment for slot i. Changing the garment keeps the
// color and size only if the new garment offers them.
func (b *Builder) SetVariant(i int, variantID string) error {
	if err := b.checkSlot(i); err != nil {
		return err
	}
	v, ok := b.catalog.variant(variantID)
	if !ok {
		return fmt.Errorf("%s: %w", variantID, ErrUnknownVariant)
	}
	slot := &b.slots[i]
	slot.VariantID = v.ID
	if slot.Color != "" && matchOption(v.Colors, slot.Color) == "" {
		slot.Color = ""
	}
	if slot.Size != "" && matchOption(v.Sizes, slot.Size) == "" {
		slot.Size = ""
	}
	return nil
}

// SetColor picks the color for slot i. The slot needs a garment first.
func (b *Builder) SetColor(i int, color string) error {
	v, err := b.slotVariant(i)
	if err != nil {
		return err
	}
	matched := matchOption(v.Colors, color)
	if matched == "" {
		return fmt.Errorf("%s %s: %w", v.Name, color, ErrInvalidColor)
	}
	b.slots[i].Color = matched
	return nil
}

// SetSize picks the size for slot i. The slot needs a garment first.
func (b *Builder) SetSize(i int, size string) error {
	v, err := b.slotVariant(i)
	if err != nil {
		return err
	}
	matched := matchOption(v.Sizes, size)
	if matched == "" {
		return fmt.Errorf("%s %s: %w", v.Name, size, ErrInvalidSize)
	}
	b.slots[i].Size = matched
	return nil
}

// SetSlot applies a full selection to slot i. Empty fields are left unset.
func (b *Builder) SetSlot(i int, slot models.TeeSlot) error {
	if err := b.SetVariant(i, slot.VariantID); err != nil {
		return err
	}
	if slot.Color != "" {
		if err := b.SetColor(i, slot.Color); err != nil {
			return err
		}
	}
	if slot.Size != "" {
		if err := b.SetSize(i, slot.Size); err != nil {
			return err
		}
	}
	return nil
}

// Missing lists the slots that still need a size.
func (b *Builder) Missing() []int {
	var missing []int
	for i, s := range b.slots {
		if s.VariantID == "" || s.Size == "" {
			missing = append(missing, i)
		}
	}
	return missing
}

// Complete reports whether every slot has a size.
func (b *Builder) Complete() bool {
	return len(b.Missing()) == 0
}

// Price is the fixed price for the builder's tee count.
func (b *Builder) Price() float64 {
	return b.catalog.teePrices[b.count]
}

// CartItem turns a complete builder into one cart line.
func (b *Builder) CartItem() (models.CartItem, error) {
	if missing := b.Missing(); len(missing) > 0 {
		return models.CartItem{}, fmt.Errorf("%d of %d tees unsized: %w", len(missing), b.count, ErrIncompleteBundle)
	}

	selections := make([]string, len(b.slots))
	for i, s := range b.slots {
		v, _ := b.catalog.variant(s.VariantID)
		label := v.Name + " / " + s.Size
		if s.Color != "" {
			label = v.Name + " / " + cases.Title(language.English).String(s.Color) + " / " + s.Size
		}
		selections[i] = label
	}
	key := fmt.Sprintf("%d|%s", b.count, strings.Join(selections, "|"))
	id := uuid.NewSHA1(customBundleNamespace, []byte(key))

	return models.CartItem{
		ProductID:   "custom-" + id.String(),
		Name:        fmt.Sprintf("Custom %d-Tee Bundle", b.count),
		Price:       b.Price(),
		Quantity:    1,
		IsBundle:    true,
		BundleID:    fmt.Sprintf("custom-%d", b.count),
		BundleItems: selections,
		BundleSize:  b.count,
	}, nil
}

func (b *Builder) checkSlot(i int) error {
	if i < 0 || i >= len(b.slots) {
		return fmt.Errorf("slot %d of %d: %w", i, len(b.slots), ErrSlotOutOfRange)
	}
	return nil
}

func (b *Builder) slotVariant(i int) (models.TeeVariant, error) {
	if err := b.checkSlot(i); err != nil {
		return models.TeeVariant{}, err
	}
	v, ok := b.catalog.variant(b.slots[i].VariantID)
	if !ok {
		return models.TeeVariant{}, fmt.Errorf("slot %d has no garment: %w", i, ErrUnknownVariant)
	}
	return v, nil
}

func matchOption(options []string, want string) string {
	want = strings.TrimSpace(want)
	for _, o := range options {
		if strings.EqualFold(o, want) {
			return o
		}
	}
	return ""
}
