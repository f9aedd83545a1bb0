package auction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config holds the engine tunables, loaded from the `auction` config section
type Config struct {
	ExtensionWindow     time.Duration
	MaxExtensions       int
	MinIncrementFloor   decimal.Decimal
	MinIncrementPercent decimal.Decimal
	SweepInterval       time.Duration
	SweepPageSize       int
	SweepConcurrency    int
	// upper bound of synthesized proxy bids per admitted bid
	MaxProxyRounds int
	LockTTL        time.Duration
	LockWait       time.Duration
}

func DefaultConfig() Config {
	return Config{
		ExtensionWindow:     5 * time.Minute,
		MaxExtensions:       3,
		MinIncrementFloor:   decimal.NewFromInt(10),
		MinIncrementPercent: decimal.NewFromInt(1),
		SweepInterval:       60 * time.Second,
		SweepPageSize:       500,
		SweepConcurrency:    8,
		MaxProxyRounds:      4,
		LockTTL:             10 * time.Second,
		LockWait:            3 * time.Second,
	}
}

// WithDefaults fills unset fields from DefaultConfig. MaxExtensions and the
// increment values keep an explicit zero only when set through the defaults.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.ExtensionWindow <= 0 {
		c.ExtensionWindow = d.ExtensionWindow
	}
	if c.MaxExtensions < 0 {
		c.MaxExtensions = d.MaxExtensions
	}
	if c.MinIncrementFloor.IsNegative() {
		c.MinIncrementFloor = d.MinIncrementFloor
	}
	if c.MinIncrementPercent.IsNegative() {
		c.MinIncrementPercent = d.MinIncrementPercent
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = d.SweepInterval
	}
	if c.SweepPageSize <= 0 {
		c.SweepPageSize = d.SweepPageSize
	}
	if c.SweepConcurrency <= 0 {
		c.SweepConcurrency = d.SweepConcurrency
	}
	if c.MaxProxyRounds <= 0 {
		c.MaxProxyRounds = d.MaxProxyRounds
	}
	if c.LockTTL <= 0 {
		c.LockTTL = d.LockTTL
	}
	if c.LockWait <= 0 {
		c.LockWait = d.LockWait
	}
	return c
}

func (c Config) DefaultIncrementPolicy() IncrementPolicy {
	return IncrementPolicy{
		Floor:   c.MinIncrementFloor,
		Percent: c.MinIncrementPercent,
	}
}
