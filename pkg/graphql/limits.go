package graphql

import (
	"fmt"
)

// LimitConfig defines limits for list results
type LimitConfig struct {
	DefaultLimit int // Default limit when no limit specified
	MaxLimit     int // Maximum allowed limit
	MaxDepth     int // Maximum selection depth, 0 disables the check
}

// DefaultLimitConfig caps lists at 1000 items and nesting at 6 levels.
func DefaultLimitConfig() LimitConfig {
	return LimitConfig{DefaultLimit: 100, MaxLimit: 1000, MaxDepth: 6}
}

// ValidateLimitConfig validates the limit configuration
func ValidateLimitConfig(config LimitConfig) error {
	if config.MaxLimit <= 0 {
		return fmt.Errorf("max limit must be greater than 0, got %d", config.MaxLimit)
	}
	if config.DefaultLimit > config.MaxLimit {
		return fmt.Errorf("default limit (%d) cannot exceed max limit (%d)", config.DefaultLimit, config.MaxLimit)
	}
	if config.DefaultLimit <= 0 {
		return fmt.Errorf("default limit must be greater than 0, got %d", config.DefaultLimit)
	}
	if config.MaxDepth < 0 {
		return fmt.Errorf("max depth must not be negative, got %d", config.MaxDepth)
	}
	return nil
}

// applyLimit applies default and max limit constraints to a limit value
func applyLimit(requestedLimit int, config LimitConfig) int {
	// If no limit specified or negative, use default
	if requestedLimit < 0 {
		return config.DefaultLimit
	}

	// Cap at max limit
	if requestedLimit > config.MaxLimit {
		return config.MaxLimit
	}

	return requestedLimit
}

// page returns the bounds of items [offset, offset+limit) within n.
func page(n, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := min(offset+limit, n)
	return offset, end
}
