package lodging

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLodging(t *testing.T) {
	now := time.Now()
	l := NewLodging("host-1", "  Seaside Cabin ", 4, decimal.RequireFromString("120.5"), now)

	assert.Equal(t, "Seaside Cabin", l.Name)
	assert.Equal(t, StateActive, l.State)
	assert.True(t, l.IsActive())
	assert.Equal(t, "120.50", l.PricePerNight.StringFixed(2))
	assert.Equal(t, now, l.CreatedAt)
	require.NoError(t, l.Validate())
}

func TestLodging_Validate(t *testing.T) {
	tests := []struct {
		name        string
		lodging     *Lodging
		expectedErr error
	}{
		{"有効な宿泊施設", &Lodging{HostID: "h", Name: "n", MaxCapacity: 2, PricePerNight: decimal.NewFromInt(50)}, nil},
		{"ホスト未指定", &Lodging{HostID: "", Name: "n", MaxCapacity: 2, PricePerNight: decimal.NewFromInt(50)}, ErrHostIDRequired},
		{"名前が空", &Lodging{HostID: "h", Name: "", MaxCapacity: 2, PricePerNight: decimal.NewFromInt(50)}, ErrLodgingNameRequired},
		{"定員0", &Lodging{HostID: "h", Name: "n", MaxCapacity: 0, PricePerNight: decimal.NewFromInt(50)}, ErrInvalidMaxCapacity},
		{"料金0", &Lodging{HostID: "h", Name: "n", MaxCapacity: 2, PricePerNight: decimal.Zero}, ErrInvalidPricePerNight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lodging.Validate()
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLodging_Retire(t *testing.T) {
	now := time.Now()
	l := NewLodging("host-1", "Cabin", 4, decimal.NewFromInt(100), now)

	require.NoError(t, l.Retire(now))
	assert.Equal(t, StateRetired, l.State)
	assert.False(t, l.IsActive())
	require.NotNil(t, l.RetiredAt)

	assert.ErrorIs(t, l.Retire(now), ErrLodgingAlreadyRetired)
}

func TestLodging_FitsAndQuote(t *testing.T) {
	l := NewLodging("host-1", "Cabin", 4, decimal.RequireFromString("99.95"), time.Now())

	assert.True(t, l.Fits(4))
	assert.False(t, l.Fits(5))
	assert.Equal(t, "299.85", l.Quote(3).StringFixed(2))
	assert.True(t, l.IsHostedBy("host-1"))
	assert.False(t, l.IsHostedBy(""))
	assert.False(t, l.IsHostedBy("guest-1"))
}
