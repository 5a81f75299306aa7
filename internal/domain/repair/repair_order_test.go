package repair

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinshop/backend/internal/domain/shared"
)

func TestNewRepairOrder(t *testing.T) {
	created := time.Date(2024, 3, 15, 9, 30, 0, 0, time.Local)
	materials := []Material{
		{MaterialName: "Màn hình", Price: decimal.NewFromInt(350000), Quantity: decimal.NewFromInt(1)},
		{MaterialName: "Keo", Price: decimal.NewFromInt(10000), Quantity: decimal.NewFromInt(2)},
	}

	order, err := NewRepairOrder("SC-01", created, "Chị Lan", "iPhone X", "", decimal.NewFromInt(600000), decimal.NewFromInt(230000), materials)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusUnpaid, order.PaymentStatus)
	assert.True(t, order.MaterialCost().Equal(decimal.NewFromInt(370000)))

	_, err = NewRepairOrder("SC-02", created, "", "", PaymentStatus("refunded"), decimal.Zero, decimal.Zero, nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewRepairOrder("SC-03", created, "", "", PaymentStatusPaid, decimal.Zero, decimal.NewFromInt(-5), nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestPaymentStatus(t *testing.T) {
	assert.True(t, PaymentStatusPaid.IsCollected())
	assert.True(t, PaymentStatusPartial.IsCollected())
	assert.False(t, PaymentStatusUnpaid.IsCollected())
	assert.Equal(t, "Chưa thanh toán", PaymentStatusUnpaid.DisplayName())
	assert.False(t, PaymentStatus("").IsValid())
}
