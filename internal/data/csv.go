package data

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"backtest-playback/internal/model"
)

// ReadBarsCSV decodes bars from CSV with a header row using the bar csv tags
// (time, open, high, low, close, bb_upper, bb_lower, entry_price,
// trailing_sl, total_profit, trade_count). Empty optional cells are missing.
func ReadBarsCSV(r io.Reader) ([]model.Bar, error) {
	var bars []model.Bar
	if err := gocsv.Unmarshal(r, &bars); err != nil {
		return nil, fmt.Errorf("failed to parse bars csv: %w", err)
	}
	return bars, nil
}

// LoadBarsCSV reads a CSV bar file from disk.
func LoadBarsCSV(path string) ([]model.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadBarsCSV(f)
}

// LoadFile loads a series from a .json backend document or a .csv bar file.
func LoadFile(path string) (model.Series, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		bars, err := LoadBarsCSV(path)
		if err != nil {
			return model.Series{}, err
		}
		return model.NewSeries(bars), nil
	case ".json":
		resp, err := LoadBacktestJSON(path)
		if err != nil {
			return model.Series{}, err
		}
		return ToSeries(resp)
	default:
		return model.Series{}, fmt.Errorf("unsupported file type %q (want .json or .csv)", filepath.Ext(path))
	}
}
