// Package quota tracks per-tenant usage against subscription limits.
// Admission checks run before a task is queued; usage recording runs
// after completion and must never undercount under concurrency.
package quota

import (
	"fmt"
	"sync"
	"time"

	"github.com/coreflow360/agentcore/pkg/models"
)

// ErrUnknownTenant is returned when no subscription is registered for a
// tenant ID.
type ErrUnknownTenant struct {
	TenantID string
}

func (e *ErrUnknownTenant) Error() string {
	return fmt.Sprintf("no subscription for tenant %q", e.TenantID)
}

// LimitExceeded is the structured admission rejection returned when a
// request would push a subscription past its effective limit.
type LimitExceeded struct {
	// TenantID is the rejected tenant.
	TenantID string
	// Limit is the effective operation limit in force.
	Limit int64
	// Consumed is the usage already recorded this period.
	Consumed int64
	// Requested is the estimated units of the rejected request.
	Requested int64
}

// Error renders a user-actionable explanation naming the exceeded limit.
func (e *LimitExceeded) Error() string {
	return fmt.Sprintf("quota exceeded for tenant %s: %d consumed + %d requested > %d limit",
		e.TenantID, e.Consumed, e.Requested, e.Limit)
}

// UsageRecord is one append-only metering entry.
type UsageRecord struct {
	// SubscriptionID is the tenant whose usage is metered.
	SubscriptionID string
	// Metric names the counter ("operations" or "cost").
	Metric string
	// Value is the amount consumed.
	Value float64
	// Timestamp is when the usage was recorded.
	Timestamp time.Time
}

// Metric names written to the metering sink.
const (
	MetricOperations = "operations"
	MetricCost       = "cost"
)

// MeteringSink receives append-only usage records.
type MeteringSink interface {
	// AppendUsage writes one metering record.
	AppendUsage(rec UsageRecord) error
}

// Accountant holds subscriptions and enforces their limits.
// All usage mutation goes through a single mutex so concurrent task
// completions for the same tenant are never undercounted.
type Accountant struct {
	// subs maps tenant IDs to their subscriptions.
	subs map[string]*models.Subscription
	// sink receives append-only metering records. May be nil.
	sink MeteringSink
	// now is injectable for tests.
	now func() time.Time
	// mu protects subs and all usage counters.
	mu sync.Mutex
}

// NewAccountant creates an Accountant writing metering records to sink.
// A nil sink disables metering persistence.
func NewAccountant(sink MeteringSink) *Accountant {
	return &Accountant{
		subs: make(map[string]*models.Subscription),
		sink: sink,
		now:  time.Now,
	}
}

// PutSubscription registers or replaces a tenant's subscription.
func (a *Accountant) PutSubscription(sub *models.Subscription) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subs[sub.TenantID] = sub
}

// GetSubscription returns a copy of the tenant's subscription.
func (a *Accountant) GetSubscription(tenantID string) (models.Subscription, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	sub, ok := a.subs[tenantID]
	if !ok {
		return models.Subscription{}, &ErrUnknownTenant{TenantID: tenantID}
	}
	return *sub, nil
}

// Check admits or rejects an estimated number of units for a tenant.
// Usage exactly reaching the limit is allowed; exceeding it is not.
// Returns nil on admission, *LimitExceeded on rejection.
func (a *Accountant) Check(tenantID string, estimatedUnits int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	sub, ok := a.subs[tenantID]
	if !ok {
		return &ErrUnknownTenant{TenantID: tenantID}
	}

	limit := sub.EffectiveLimit()
	if sub.Usage.ConsumedOperations+estimatedUnits > limit {
		return &LimitExceeded{
			TenantID:  tenantID,
			Limit:     limit,
			Consumed:  sub.Usage.ConsumedOperations,
			Requested: estimatedUnits,
		}
	}
	return nil
}

// RecordUsage adds completed work to a tenant's counters and appends
// operation-count and cost records to the metering sink. Recording is
// atomic with respect to concurrent recordings for the same tenant.
func (a *Accountant) RecordUsage(tenantID string, cost float64, units int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	sub, ok := a.subs[tenantID]
	if !ok {
		return &ErrUnknownTenant{TenantID: tenantID}
	}

	sub.Usage.ConsumedOperations += units
	sub.Usage.ConsumedCost += cost

	if a.sink == nil {
		return nil
	}
	now := a.now()
	if err := a.sink.AppendUsage(UsageRecord{SubscriptionID: tenantID, Metric: MetricOperations, Value: float64(units), Timestamp: now}); err != nil {
		return fmt.Errorf("meter operations: %w", err)
	}
	if err := a.sink.AppendUsage(UsageRecord{SubscriptionID: tenantID, Metric: MetricCost, Value: cost, Timestamp: now}); err != nil {
		return fmt.Errorf("meter cost: %w", err)
	}
	return nil
}
