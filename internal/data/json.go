package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"backtest-playback/internal/model"
)

// LoadBacktestJSON loads a backend-shaped document saved to disk.
func LoadBacktestJSON(path string) (*model.BacktestResponse, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backtest file: %w", err)
	}
	var resp model.BacktestResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse backtest file: %w", err)
	}
	if !resp.HasChartData() {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingChartData)
	}
	return &resp, nil
}

// SaveBacktestJSON writes resp to path, creating parent directories.
func SaveBacktestJSON(resp *model.BacktestResponse, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	raw, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backtest: %w", err)
	}

	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write backtest file: %w", err)
	}
	return nil
}
