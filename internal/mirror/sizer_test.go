package mirror

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"counterTradeBot/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func constraints(min, max, maxMkt, step, minNotional string) domain.InstrumentConstraints {
	return domain.InstrumentConstraints{
		MinOrderQty:    d(min),
		MaxOrderQty:    d(max),
		MaxMktOrderQty: d(maxMkt),
		QtyStep:        d(step),
		MinNotional:    d(minNotional),
	}
}

func TestSize(t *testing.T) {
	tests := []struct {
		name             string
		primaryEquity    string
		counterEquity    string
		originalNotional string
		refPrice         string
		c                domain.InstrumentConstraints
		isMarket         bool
		want             string
		wantErr          error
	}{
		{
			name:             "proportional scaling across account sizes",
			primaryEquity:    "10000",
			counterEquity:    "1000",
			originalNotional: "500",
			refPrice:         "100",
			c:                constraints("0.1", "100", "100", "0.1", "0"),
			want:             "0.5",
		},
		{
			name:             "raw quantity rounds to nearest step",
			primaryEquity:    "10000",
			counterEquity:    "1000",
			originalNotional: "530",
			refPrice:         "100",
			c:                constraints("0.1", "100", "100", "0.1", "0"),
			want:             "0.5", // raw 0.53 -> nearest 0.1 multiple
		},
		{
			name:             "quantity below minimum clamps up",
			primaryEquity:    "10000",
			counterEquity:    "10",
			originalNotional: "500",
			refPrice:         "100",
			c:                constraints("0.1", "100", "100", "0.1", "0"),
			want:             "0.1", // raw 0.005 rounds to 0, clamp raises to min
		},
		{
			name:             "quantity above maximum clamps down",
			primaryEquity:    "100",
			counterEquity:    "100000",
			originalNotional: "100",
			refPrice:         "100",
			c:                constraints("0.1", "100", "100", "0.1", "0"),
			want:             "100", // raw 1000 exceeds max
		},
		{
			name:             "market order capped at market maximum",
			primaryEquity:    "100",
			counterEquity:    "100000",
			originalNotional: "100",
			refPrice:         "100",
			c:                constraints("0.1", "100", "50", "0.1", "0"),
			isMarket:         true,
			want:             "50",
		},
		{
			name:             "limit order not capped at market maximum",
			primaryEquity:    "100",
			counterEquity:    "100000",
			originalNotional: "100",
			refPrice:         "100",
			c:                constraints("0.1", "100", "50", "0.1", "0"),
			isMarket:         false,
			want:             "100",
		},
		{
			name:             "minimum notional repair rounds up to the step above",
			primaryEquity:    "100",
			counterEquity:    "100",
			originalNotional: "4",
			refPrice:         "10",
			c:                constraints("0.1", "100", "100", "1", "5"),
			want:             "1", // notional 4 < 5: ceil(5/10/1)*1
		},
		{
			name:             "minimum notional repair with fractional step",
			primaryEquity:    "100",
			counterEquity:    "100",
			originalNotional: "4.2",
			refPrice:         "10",
			c:                constraints("0.1", "100", "100", "0.1", "5"),
			want:             "0.5", // raw 0.42 -> 0.4, notional 4 < 5: ceil(0.5/0.1)*0.1
		},
		{
			name:             "repaired quantity re-clamped to maximum",
			primaryEquity:    "100",
			counterEquity:    "1",
			originalNotional: "1",
			refPrice:         "0.001",
			c:                constraints("1", "1000", "1000", "1", "100"),
			want:             "1000", // repair asks for 100000, max wins
		},
		{
			name:             "zero primary equity fails",
			primaryEquity:    "0",
			counterEquity:    "1000",
			originalNotional: "500",
			refPrice:         "100",
			c:                constraints("0.1", "100", "100", "0.1", "0"),
			wantErr:          ErrZeroEquity,
		},
		{
			name:             "zero reference price fails",
			primaryEquity:    "10000",
			counterEquity:    "1000",
			originalNotional: "500",
			refPrice:         "0",
			c:                constraints("0.1", "100", "100", "0.1", "0"),
			wantErr:          ErrZeroPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Size(d(tt.primaryEquity), d(tt.counterEquity), d(tt.originalNotional), d(tt.refPrice), tt.c, tt.isMarket)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

// The sizer output must always be a multiple of the quantity step, sit within
// [min, max], and (unless clamped by the maximum) have a notional of at least
// the minimum notional value.
func TestSize_Invariants(t *testing.T) {
	c := constraints("0.01", "500", "250", "0.01", "10")
	price := d("25")

	cases := []struct {
		primary, counter, notional string
		isMarket                   bool
	}{
		{"10000", "1000", "500", false},
		{"10000", "1000", "500", true},
		{"5000", "50", "3", false},
		{"300", "90000", "299", true},
		{"7777", "1234.56", "0.42", false},
		{"123.45", "9999", "123", false},
	}

	for _, tc := range cases {
		qty, err := Size(d(tc.primary), d(tc.counter), d(tc.notional), price, c, tc.isMarket)
		require.NoError(t, err)

		assert.True(t, qty.Mod(c.QtyStep).IsZero(), "qty %s not a multiple of step %s", qty, c.QtyStep)
		assert.True(t, qty.GreaterThanOrEqual(c.MinOrderQty), "qty %s below min %s", qty, c.MinOrderQty)
		assert.True(t, qty.LessThanOrEqual(c.MaxOrderQty), "qty %s above max %s", qty, c.MaxOrderQty)
		if qty.LessThan(c.MaxOrderQty) {
			assert.True(t, qty.Mul(price).GreaterThanOrEqual(c.MinNotional),
				"qty %s notional %s below minimum %s", qty, qty.Mul(price), c.MinNotional)
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		name string
		qty  string
		step string
		want string
	}{
		{name: "three decimal step", qty: "0.5", step: "0.001", want: "0.500"},
		{name: "one decimal step", qty: "0.5", step: "0.1", want: "0.5"},
		{name: "integer step", qty: "3", step: "1", want: "3"},
		{name: "two decimal step", qty: "1.25", step: "0.25", want: "1.25"},
		// Exchange info delivers steps with trailing zeros; the padding must
		// not widen the output precision.
		{name: "exchange-style padded step", qty: "0.5", step: "0.00100000", want: "0.500"},
		{name: "exchange-style padded integer step", qty: "3", step: "1.00000000", want: "3"},
		{name: "exchange-style padded one decimal step", qty: "0.5", step: "0.10000000", want: "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatQuantity(d(tt.qty), d(tt.step)))
		})
	}
}
