package types

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeString_Validate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "valid morning", value: "09:00"},
		{name: "valid evening", value: "23:59"},
		{name: "end of day", value: "24:00"},
		{name: "past end of day", value: "24:30", wantErr: true},
		{name: "hour out of range", value: "25:00", wantErr: true},
		{name: "no leading zero", value: "9:00", wantErr: true},
		{name: "garbage", value: "ab:cd", wantErr: true},
		{name: "empty", value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTimeStringFromString(tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	got, err := TimeString("09:45").AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("10:15"), got)

	_, err = TimeString("23:30").AddMinutes(45)
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_Compare(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("09:15"))
	assert.False(t, TimeString("09:15").IsBefore("09:15"))
	assert.True(t, TimeString("17:00").IsAfter("16:59"))
}

func TestTimeString_On(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	got, err := TimeString("09:30").On(date, loc)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 2, 9, 30, 0, 0, loc), got)
	assert.Equal(t, 6, got.UTC().Hour())
}

func TestTimeString_EndOfDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	minutes, err := EndOfDay.Minutes()
	require.NoError(t, err)
	assert.Equal(t, 24*60, minutes)
	assert.True(t, TimeString("23:00").IsBefore(EndOfDay))

	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	got, err := EndOfDay.On(date, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, loc), got)

	var ts TimeString
	require.NoError(t, ts.Scan("24:00:00"))
	assert.Equal(t, EndOfDay, ts)
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString
	require.NoError(t, ts.Scan("10:15:00"))
	assert.Equal(t, TimeString("10:15"), ts)

	require.NoError(t, ts.Scan([]byte("08:00")))
	assert.Equal(t, TimeString("08:00"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())
}
