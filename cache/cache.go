/*
Package cache memoizes deduction breakdowns.

PURPOSE:
  A calculation is a pure function of (constant set, input, dues rate), so
  its result can be cached by those values. The API checks the cache before
  computing and fills it afterwards.

IMPLEMENTATIONS:
  Memory: In-process LRU with per-entry expiry, used by default and in tests
  Redis:  Shared cache for several API instances (go-redis v9)

SEE ALSO:
  - api/handlers.go: Cache lookup around Calculator.Calculate
*/
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"
	"github.com/warp/paycalc/payroll"
)

// Cache stores breakdowns by key. A miss is reported as ok == false.
type Cache interface {
	Get(ctx context.Context, key string) (payroll.DeductionBreakdown, bool)
	Set(ctx context.Context, key string, b payroll.DeductionBreakdown) error
}

// Key builds the cache key for one calculation. A nil duesRate means the
// set's default and is keyed separately from an explicit override.
func Key(setID string, in payroll.WeeklyInput, duesRate *decimal.Decimal) string {
	dues := "default"
	if duesRate != nil {
		dues = duesRate.String()
	}
	return fmt.Sprintf("paycalc:%s:%s:%s:%s:%s",
		setID, payroll.NormalizeMode(string(in.Mode)),
		in.TaxableWeekly.String(), in.NonTaxableWeekly.String(), dues)
}

// Fingerprint identifies a constant set's serialized contents. Used as part
// of the key namespace so a replaced set never hits entries computed with
// its previous figures, even in a shared Redis.
func Fingerprint(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// DefaultMemorySize bounds the in-process cache when no size is given.
const DefaultMemorySize = 10000

// Memory is an in-process LRU cache. Entries expire after the TTL and the
// least recently used entry is evicted once size entries are held.
type Memory struct {
	lru *expirable.LRU[string, payroll.DeductionBreakdown]
}

// NewMemory creates a cache holding at most size entries for ttl each.
// A size <= 0 uses DefaultMemorySize; a ttl <= 0 never expires entries.
func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = DefaultMemorySize
	}
	return &Memory{lru: expirable.NewLRU[string, payroll.DeductionBreakdown](size, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, key string) (payroll.DeductionBreakdown, bool) {
	return m.lru.Get(key)
}

func (m *Memory) Set(_ context.Context, key string, b payroll.DeductionBreakdown) error {
	m.lru.Add(key, b)
	return nil
}

// Len reports the number of live entries.
func (m *Memory) Len() int {
	return m.lru.Len()
}
