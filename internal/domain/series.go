package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidSeriesLength = errors.New("series length must be 0 or a positive odd number")

// SeriesConfig fixes the target length of a series. Zero means unlimited.
type SeriesConfig struct {
	TargetLength int `json:"target_length"`
}

func NewSeriesConfig(length int) (SeriesConfig, error) {
	if length < 0 || (length > 0 && length%2 == 0) {
		return SeriesConfig{}, fmt.Errorf("%w: %d", ErrInvalidSeriesLength, length)
	}
	return SeriesConfig{TargetLength: length}, nil
}

func (s SeriesConfig) Unlimited() bool {
	return s.TargetLength == 0
}

// Threshold is the number of round wins that takes the series: ceil(n/2).
func (s SeriesConfig) Threshold() int {
	if s.TargetLength <= 0 {
		return 0
	}
	return (s.TargetLength + 1) / 2
}

func (s SeriesConfig) Label() string {
	if s.Unlimited() {
		return "Unlimited"
	}
	return fmt.Sprintf("Best of %d (%d Wins)", s.TargetLength, s.Threshold())
}
