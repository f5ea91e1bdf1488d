package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPhone(t *testing.T) {
	cases := []struct {
		phone string
		valid bool
	}{
		{"+79161234567", true},
		{"79161234567", true},
		{"89000000000", true},
		{"abc123", false},
		{"", false},
		{"+", false},
		{"++79161234567", false},
		{"7916+1234567", false},
		{"7916 123 45 67", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.valid, ValidPhone(tc.phone), "phone %q", tc.phone)
	}
}

func TestParseDeliveryDate(t *testing.T) {
	date, err := ParseDeliveryDate("15.05.2023")
	assert.NoError(t, err)
	assert.Equal(t, 2023, date.Year())
	assert.Equal(t, 5, int(date.Month()))
	assert.Equal(t, 15, date.Day())

	for _, bad := range []string{"2023-05-15", "31.13.2023", "15.05.23", "05.15.2023", "today", ""} {
		_, err := ParseDeliveryDate(bad)
		assert.Error(t, err, "date %q", bad)
	}
}

func TestSessionStoreUpdateAndClear(t *testing.T) {
	store := NewSessionStore()

	_, ok := store.Get(1)
	assert.False(t, ok)

	store.Update(1, func(s *Session) {
		s.State = StateAwaitingAddress
		s.OrderID = 42
	})

	session, ok := store.Get(1)
	assert.True(t, ok)
	assert.Equal(t, StateAwaitingAddress, session.State)
	assert.Equal(t, uint(42), session.OrderID)

	store.Clear(1)
	_, ok = store.Get(1)
	assert.False(t, ok)
}
