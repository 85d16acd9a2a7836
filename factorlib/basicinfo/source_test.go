package basicinfo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/serenity0102/factor-modelling-mining/common"
	"github.com/serenity0102/factor-modelling-mining/data/local"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pricesCSV = `ticker,date,close,market_cap,volume
AAA,2024-01-03,10.5,1000,200
AAA,2024-01-02,10,1000,100
BBB,2024-01-02,20,,300
BBB,2024-01-03,21,2100,
`

const fundamentalsCSV = `ticker,filing_date,field,value
AAA,2024-01-02,eps,1.5
AAA,2024-01-02,book_value_per_share,4
BBB,2024-01-05,eps,2
`

func TestSourceCSV(t *testing.T) {
	s, err := NewSourceCSV(strings.NewReader(pricesCSV), strings.NewReader(fundamentalsCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"AAA", "BBB"}, s.Tickers())
	assert.Equal(t, []string{"close", "market_cap", "volume", "book_value_per_share", "eps"}, s.FieldNames())

	h, ok := s.History("AAA", common.MustParseDate("2024-01-01"), common.MustParseDate("2024-01-31"))
	require.True(t, ok)
	require.Len(t, h.Prices, 2)
	assert.Equal(t, common.MustParseDate("2024-01-02"), h.Prices[0].Date)
	require.Len(t, h.Fundamentals, 1)
	assert.Len(t, h.Fundamentals[0].Fields, 2)

	// 空市值、空成交量视为缺失
	b, _ := s.History("BBB", common.MustParseDate("2024-01-01"), common.MustParseDate("2024-01-31"))
	_, ok = b.CapAt(common.MustParseDate("2024-01-02"))
	assert.False(t, ok)
	_, ok = b.VolumeAt(common.MustParseDate("2024-01-03"))
	assert.False(t, ok)

	// 截止日之后的披露不可见
	b, _ = s.History("BBB", common.MustParseDate("2024-01-01"), common.MustParseDate("2024-01-03"))
	assert.Empty(t, b.Fundamentals)

	_, ok = s.History("CCC", common.MustParseDate("2024-01-01"), common.MustParseDate("2024-01-31"))
	assert.False(t, ok)

	u, err := s.Universe(nil, common.MustParseDate("2024-01-03"), common.MustParseDate("2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, 2, u.Len())
	assert.Len(t, u.Dates(), 1)

	_, err = s.Universe([]string{"CCC"}, common.MustParseDate("2024-01-01"), common.MustParseDate("2024-01-31"))
	assert.Error(t, err)
}

func TestSourceCSVRejectsBadInput(t *testing.T) {
	_, err := NewSourceCSV(strings.NewReader("ticker,date,close\nAAA,2024-01-02,1\n"), nil)
	assert.Error(t, err)

	_, err = NewSourceCSV(strings.NewReader("ticker,date,close,market_cap,volume\naaa,2024-01-02,1,1,1\n"), nil)
	assert.Error(t, err)

	_, err = NewSourceCSV(strings.NewReader("ticker,date,close,market_cap,volume\nAAA,01/02/2024,1,1,1\n"), nil)
	assert.Error(t, err)
}

func TestNewSourceFromFiles(t *testing.T) {
	dir := t.TempDir()
	pp := filepath.Join(dir, "prices.csv")
	require.NoError(t, os.WriteFile(pp, []byte(pricesCSV), 0o644))

	s, err := NewSource(KindCSV, pp, "")
	require.NoError(t, err)
	assert.Len(t, s.Tickers(), 2)

	_, err = NewSource("parquet", pp, "")
	assert.Error(t, err)

	mem := NewSourceMemory(s.(*SourceCSV).u)
	assert.Equal(t, s.Tickers(), mem.Tickers())
}

func TestLoadSourceCSVPrefersZlib(t *testing.T) {
	dir := t.TempDir()
	pp := filepath.Join(dir, "prices.csv")
	require.NoError(t, local.SaveZipFile(pp, []byte(pricesCSV)))

	s, err := LoadSourceCSV(pp, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, s.Tickers())
}
