package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backtest-playback/internal/model"
)

func TestBacktestJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "run.json")
	resp := &model.BacktestResponse{ChartData: []model.Bar{
		{Time: 1736985600, Close: 10, EntryPrice: model.Some(0)},
		{Time: 1736985900, Close: 11, EntryPrice: model.Some(10.5), TrailingSL: model.Some(10)},
	}}
	require.NoError(t, SaveBacktestJSON(resp, path))

	series, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.True(t, series.At(1).InTrade())
	assert.False(t, series.At(0).BBUpper.Valid)
}

func TestLoadBacktestJSONWithoutChartData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"trades": []}`), 0o644))

	_, err := LoadBacktestJSON(path)
	assert.ErrorIs(t, err, ErrMissingChartData)
}

func TestReadBarsCSV(t *testing.T) {
	in := strings.Join([]string{
		"time,close,bb_upper,bb_lower,entry_price,trailing_sl,total_profit,trade_count",
		"1736985600,2000.5,,,0,0,0,0",
		"1736985900,2001,2006,1996,2000.75,1995,12.5,3",
	}, "\n")

	bars, err := ReadBarsCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.False(t, bars[0].BBUpper.Valid)
	assert.False(t, bars[0].InTrade())
	assert.Equal(t, 2006.0, bars[1].BBUpper.Value)
	assert.True(t, bars[1].InTrade())
	assert.Equal(t, 12.5, bars[1].TotalProfit)
	assert.Equal(t, 3, bars[1].TradeCount)
}

func TestLoadFileRejectsUnknownExtension(t *testing.T) {
	_, err := LoadFile("bars.parquet")
	assert.Error(t, err)
}
