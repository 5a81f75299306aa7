package trade

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinshop/backend/internal/domain/shared"
)

func TestNewSale(t *testing.T) {
	date := time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local)
	items := []SaleItem{
		{Name: "Pin 18650", Quantity: decimal.NewFromInt(2), SellingPrice: decimal.NewFromInt(50000), CostPrice: decimal.NewFromInt(30000)},
	}

	t.Run("defaults total to line sum", func(t *testing.T) {
		sale, err := NewSale("BH-001", date, decimal.Zero, "Anh Minh", "cash", items)
		require.NoError(t, err)
		assert.True(t, sale.Total.Equal(decimal.NewFromInt(100000)))
		assert.True(t, sale.Cost().Equal(decimal.NewFromInt(60000)))
		assert.NotEqual(t, "", sale.ID.String())
	})

	t.Run("keeps explicit total", func(t *testing.T) {
		sale, err := NewSale("BH-002", date, decimal.NewFromInt(90000), "", "transfer", items)
		require.NoError(t, err)
		assert.True(t, sale.Total.Equal(decimal.NewFromInt(90000)))
	})

	t.Run("rejects bad input", func(t *testing.T) {
		cases := map[string]func() error{
			"empty code": func() error { _, err := NewSale(" ", date, decimal.Zero, "", "", items); return err },
			"zero date":  func() error { _, err := NewSale("X", time.Time{}, decimal.Zero, "", "", items); return err },
			"no items":   func() error { _, err := NewSale("X", date, decimal.Zero, "", "", nil); return err },
			"zero qty": func() error {
				_, err := NewSale("X", date, decimal.Zero, "", "", []SaleItem{{Name: "a", Quantity: decimal.Zero}})
				return err
			},
			"negative cost": func() error {
				_, err := NewSale("X", date, decimal.Zero, "", "", []SaleItem{{Name: "a", Quantity: decimal.NewFromInt(1), CostPrice: decimal.NewFromInt(-1)}})
				return err
			},
		}
		for name, fn := range cases {
			t.Run(name, func(t *testing.T) {
				assert.True(t, errors.Is(fn(), shared.ErrInvalidInput))
			})
		}
	})
}
