package market

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trading-console/internal/errors"
	"trading-console/internal/models"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := NewCatalogFromListings(DefaultListings())
	require.NoError(t, err)
	assert.Equal(t, 5, c.Len())

	inst, ok := c.Lookup("tcs")
	require.True(t, ok)
	assert.Equal(t, "Tata Consultancy Services", inst.Name)
	assert.True(t, inst.Price.Equal(decimal.NewFromInt(3650)))

	price, ok := c.Price(" itc ")
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(450)))

	_, ok = c.Lookup("WIPRO")
	assert.False(t, ok)
	price, ok = c.Price("WIPRO")
	assert.False(t, ok)
	assert.True(t, price.IsZero())

	symbols := make([]string, 0, c.Len())
	for _, i := range c.Instruments() {
		symbols = append(symbols, i.Symbol)
	}
	assert.Equal(t, []string{"TCS", "INFY", "RELI", "HDFC", "ITC"}, symbols)
}

func TestCatalogRejectsBadListings(t *testing.T) {
	tests := []struct {
		name     string
		listings []Listing
		target   error
	}{
		{"unparseable price", []Listing{{Symbol: "A", Name: "A", Price: "abc"}}, apperrors.ErrInvalidPrice},
		{"negative price", []Listing{{Symbol: "A", Name: "A", Price: "-1"}}, apperrors.ErrInputValidation},
		{"empty symbol", []Listing{{Symbol: "  ", Name: "A", Price: "1"}}, apperrors.ErrInputValidation},
		{"duplicate symbol", []Listing{{Symbol: "A", Price: "1"}, {Symbol: "a", Price: "2"}}, apperrors.ErrInputValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalogFromListings(tt.listings)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestInstrumentsReturnsCopy(t *testing.T) {
	c, err := NewCatalog([]models.Instrument{{Symbol: "X", Name: "X Corp", Price: decimal.NewFromInt(10)}})
	require.NoError(t, err)

	list := c.Instruments()
	list[0].Price = decimal.NewFromInt(99)

	price, _ := c.Price("X")
	assert.True(t, price.Equal(decimal.NewFromInt(10)))
}
