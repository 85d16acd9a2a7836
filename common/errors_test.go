package common

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConditionErrorMatchesSentinel(t *testing.T) {
	err := NewConditionError(CondMissingData, "AAPL", MustParseDate("2024-01-02"), "no close")
	wrapped := fmt.Errorf("unit RSI: %w", err)

	assert.True(t, errors.Is(wrapped, ErrMissingData))
	assert.False(t, errors.Is(wrapped, ErrAlignment))
	assert.Equal(t, CondMissingData, ConditionOf(wrapped))
	assert.Contains(t, err.Error(), "ticker=AAPL")
	assert.Contains(t, err.Error(), "date=2024-01-02")
}

func TestConditionOfPlainSentinel(t *testing.T) {
	assert.Equal(t, CondInsufficientUniverse, ConditionOf(fmt.Errorf("x: %w", ErrInsufficientUniverse)))
	assert.Equal(t, CondNone, ConditionOf(errors.New("boom")))
	assert.Equal(t, CondNone, ConditionOf(nil))
}

func TestConditionString(t *testing.T) {
	assert.Equal(t, "AlignmentError", CondAlignment.String())
	assert.Equal(t, "InsufficientSample", CondInsufficientSample.String())
}

func TestValidTicker(t *testing.T) {
	tests := []struct {
		ticker string
		want   bool
	}{
		{"AAPL", true},
		{"BRK1", true},
		{"ABCDEFGHIJ", true},
		{"ABCDEFGHIJK", false},
		{"aapl", false},
		{"BRK.B", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidTicker(tt.ticker), tt.ticker)
	}
}

func TestSectionSequenceAt(t *testing.T) {
	d1 := MustParseDate("2024-01-02")
	d2 := MustParseDate("2024-01-03")
	tickers := []string{"A", "B"}
	s1 := NewSectionData(d1, tickers)
	s2 := NewSectionData(d2, tickers)
	s2.Values[1], s2.Valid[1] = 3.5, true
	seq := SectionSequence{Tickers: tickers, Data: []SectionData{s1, s2}}

	assert.True(t, seq.Valid())
	sd, ok := seq.At(d2)
	assert.True(t, ok)
	v, ok := sd.Get("B")
	assert.True(t, ok)
	assert.Equal(t, 3.5, v)
	_, ok = sd.Get("A")
	assert.False(t, ok)
	_, ok = seq.At(d2.Add(24 * time.Hour))
	assert.False(t, ok)

	seq.Data = []SectionData{s2, s1}
	assert.False(t, seq.Valid())
}
