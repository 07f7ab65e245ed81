package extsort

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ufinke/cubaja-sub001/tempfile"
)

// Config holds configuration settings for a Sorter
type Config struct {
	RunSize           int                  // amount of items sorted together as one run; more items spill to disk
	BlockSize         int                  // bytes per block written to the temp file
	TempFilesDir      string               // empty for use OS default ex: /tmp
	PreferDiskBacked  bool                 // with an empty TempFilesDir, prefer e.g. /var/tmp over a possibly memory backed /tmp
	FilePrefix        string               // filename prefix for the temp file
	Compression       tempfile.Compression // codec for spilled blocks
	RequestBufferSize int                  // runs queued for the worker; each one above zero raises the memory bound by RunSize
	ResultBufferSize  int                  // capacity of the queue of merged items handed to the consumer
	OfferTimeout      time.Duration        // how long Add waits on a full queue before rechecking for failures
	Logger            *zap.Logger          // receives progress diagnostics, nil disables them
	LogInterval       time.Duration        // minimum time between two progress lines
}

// DefaultConfig returns the default configuration options used if none provided
func DefaultConfig() *Config {
	return &Config{
		RunSize:           131072,
		BlockSize:         tempfile.DefaultBlockSize,
		TempFilesDir:      "",
		FilePrefix:        tempfile.DefaultPrefix,
		Compression:       tempfile.CompressionNone,
		RequestBufferSize: 0,
		ResultBufferSize:  1024,
		OfferTimeout:      time.Second,
		Logger:            nil,
		LogInterval:       60 * time.Second,
	}
}

// mergeConfig takes a provided config and returns a copy with any values
// not set replaced by the defaults
func mergeConfig(c *Config) Config {
	d := DefaultConfig()
	if c == nil {
		return *d
	}
	m := *c
	if m.RunSize < 1 {
		m.RunSize = d.RunSize
	}
	if m.BlockSize < 1 {
		m.BlockSize = d.BlockSize
	}
	if m.FilePrefix == "" {
		m.FilePrefix = d.FilePrefix
	}
	if m.RequestBufferSize < 0 {
		m.RequestBufferSize = d.RequestBufferSize
	}
	if m.ResultBufferSize < 0 {
		m.ResultBufferSize = d.ResultBufferSize
	}
	if m.OfferTimeout <= 0 {
		m.OfferTimeout = d.OfferTimeout
	}
	if m.LogInterval <= 0 {
		m.LogInterval = d.LogInterval
	}
	// skipping TempFilesDir as it is the empty string
	return m
}

// validateConfig rejects values which have no sensible default replacement.
func validateConfig(c *Config) error {
	if int64(c.BlockSize) > math.MaxUint32-tempfile.HeaderSize {
		return &ConfigError{Field: "BlockSize", Value: c.BlockSize, Reason: "does not fit a block header"}
	}
	switch c.Compression {
	case tempfile.CompressionNone, tempfile.CompressionLZ4:
	default:
		return &ConfigError{Field: "Compression", Value: c.Compression, Reason: "unknown compression"}
	}
	return nil
}

func (c *Config) tempOptions() tempfile.Options {
	return tempfile.Options{
		BlockSize:   c.BlockSize,
		Compression: c.Compression,
		Prefix:      c.FilePrefix,
	}
}

func (c *Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
