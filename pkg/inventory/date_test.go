package inventory

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-31")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2025, time.March, 31), d)
	assert.Equal(t, "2025-03-31", d.String())

	_, err = ParseDate("2025/03/31")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseDate("2025-02-30")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDate_Compare(t *testing.T) {
	a := NewDate(2025, time.January, 31)
	b := a.AddDays(1)

	assert.Equal(t, "2025-02-01", b.String())
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.Equal(b.AddDays(-1)))
	assert.False(t, a.Before(a))
}

// TestDateOf は時刻部分が切り捨てられることを確認
func TestDateOf(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	d := DateOf(time.Date(2025, time.June, 1, 23, 59, 0, 0, jst))
	assert.Equal(t, NewDate(2025, time.June, 1), d)
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Expiration Date `json:"expiration"`
	}

	data, err := json.Marshal(payload{Expiration: NewDate(2026, time.July, 4)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"expiration":"2026-07-04"}`, string(data))

	data, err = json.Marshal(payload{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"expiration":null}`, string(data))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"expiration":"2026-07-04"}`), &p))
	assert.Equal(t, NewDate(2026, time.July, 4), p.Expiration)

	require.NoError(t, json.Unmarshal([]byte(`{"expiration":null}`), &p))
	assert.True(t, p.Expiration.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"expiration":"07/04/2026"}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"expiration":20260704}`), &p))
}

func TestDate_SQL(t *testing.T) {
	v, err := NewDate(2025, time.December, 1).Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-12-01", v)

	v, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	tests := []struct {
		name string
		src  interface{}
		want Date
	}{
		{"文字列", "2025-12-01", NewDate(2025, time.December, 1)},
		{"バイト列", []byte("2025-12-01"), NewDate(2025, time.December, 1)},
		{"タイムスタンプ文字列", "2025-12-01T00:00:00Z", NewDate(2025, time.December, 1)},
		{"time.Time", time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), NewDate(2025, time.December, 1)},
		{"NULL", nil, Date{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, tt.want, d)
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan("12/01"))
}

func TestStockLot_Expiry(t *testing.T) {
	today := NewDate(2025, time.May, 10)
	lot := &StockLot{ExpirationDate: today}

	assert.False(t, lot.IsExpired(today))
	assert.True(t, lot.IsExpiringWithin(today, 0))
	assert.True(t, lot.IsExpired(today.AddDays(1)))
	assert.False(t, lot.IsExpiringWithin(today.AddDays(1), 30))

	lot.ExpirationDate = today.AddDays(30)
	assert.True(t, lot.IsExpiringWithin(today, 30))
	assert.False(t, lot.IsExpiringWithin(today, 29))
}
