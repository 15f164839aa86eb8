// Package logger provides a stats collector that writes metrics to a zap logger.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pathwae/dashboard/internal/stats"
)

// Collector implements stats.Collector by logging every update.
type Collector struct {
	logger *zap.Logger
	level  zapcore.Level
}

var _ stats.Collector = (*Collector)(nil)

// New creates a collector logging at debug level.
// A nil logger is replaced by a no-op logger.
func New(logger *zap.Logger) *Collector {
	return NewAtLevel(logger, zapcore.DebugLevel)
}

// NewAtLevel creates a collector logging at the given level.
func NewAtLevel(logger *zap.Logger, level zapcore.Level) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{logger: logger, level: level}
}

func (c *Collector) IncCounter(name string, delta int64) {
	c.logger.Log(c.level, "counter", zap.String("metric", name), zap.Int64("delta", delta))
}

func (c *Collector) SetGauge(name string, value int64) {
	c.logger.Log(c.level, "gauge", zap.String("metric", name), zap.Int64("value", value))
}

func (c *Collector) ObserveHistogram(name string, value float64) {
	c.logger.Log(c.level, "histogram", zap.String("metric", name), zap.Float64("value", value))
}
