package quota

import (
	"errors"
	"sync"
	"testing"

	"github.com/coreflow360/agentcore/pkg/models"
)

type memorySink struct {
	mu      sync.Mutex
	records []UsageRecord
}

func (m *memorySink) AppendUsage(rec UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func newSub(tenant string, tier models.Tier, consumed int64) *models.Subscription {
	return &models.Subscription{
		TenantID: tenant,
		Tier:     tier,
		Usage:    models.Usage{ConsumedOperations: consumed},
	}
}

func TestCheckBoundary(t *testing.T) {
	a := NewAccountant(nil)
	// Starter default limit is 1000.
	a.PutSubscription(newSub("t1", models.TierStarter, 990))

	if err := a.Check("t1", 10); err != nil {
		t.Errorf("exactly reaching the limit must be admitted: %v", err)
	}
	err := a.Check("t1", 11)
	if err == nil {
		t.Fatal("exceeding the limit must be rejected")
	}
	var exceeded *LimitExceeded
	if !errors.As(err, &exceeded) {
		t.Fatalf("expected *LimitExceeded, got %T", err)
	}
	if exceeded.Limit != 1000 || exceeded.Consumed != 990 || exceeded.Requested != 11 {
		t.Errorf("rejection should name the numbers: %+v", exceeded)
	}
}

func TestCheckUsesCustomLimit(t *testing.T) {
	a := NewAccountant(nil)
	sub := newSub("t2", models.TierStarter, 40)
	sub.CustomLimit = 50
	a.PutSubscription(sub)

	if err := a.Check("t2", 10); err != nil {
		t.Errorf("custom limit boundary should admit: %v", err)
	}
	if err := a.Check("t2", 11); err == nil {
		t.Error("custom limit should reject beyond 50")
	}
}

func TestCheckUnknownTenant(t *testing.T) {
	a := NewAccountant(nil)
	err := a.Check("ghost", 1)
	var unknown *ErrUnknownTenant
	if !errors.As(err, &unknown) {
		t.Fatalf("expected *ErrUnknownTenant, got %v", err)
	}
}

func TestRecordUsageUpdatesCountersAndSink(t *testing.T) {
	sink := &memorySink{}
	a := NewAccountant(sink)
	a.PutSubscription(newSub("t3", models.TierProfessional, 0))

	if err := a.RecordUsage("t3", 0.25, 5); err != nil {
		t.Fatal(err)
	}

	sub, err := a.GetSubscription("t3")
	if err != nil {
		t.Fatal(err)
	}
	if sub.Usage.ConsumedOperations != 5 {
		t.Errorf("consumed operations = %d, want 5", sub.Usage.ConsumedOperations)
	}
	if sub.Usage.ConsumedCost != 0.25 {
		t.Errorf("consumed cost = %v, want 0.25", sub.Usage.ConsumedCost)
	}

	if len(sink.records) != 2 {
		t.Fatalf("expected 2 metering records, got %d", len(sink.records))
	}
	if sink.records[0].Metric != MetricOperations || sink.records[0].Value != 5 {
		t.Errorf("unexpected operations record: %+v", sink.records[0])
	}
	if sink.records[1].Metric != MetricCost || sink.records[1].Value != 0.25 {
		t.Errorf("unexpected cost record: %+v", sink.records[1])
	}
}

func TestRecordUsageIsAtomicUnderConcurrency(t *testing.T) {
	a := NewAccountant(nil)
	a.PutSubscription(newSub("t4", models.TierUltimate, 0))

	const workers = 50
	const perWorker = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if err := a.RecordUsage("t4", 0.001, 1); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	sub, _ := a.GetSubscription("t4")
	if sub.Usage.ConsumedOperations != workers*perWorker {
		t.Errorf("usage undercounted: got %d, want %d",
			sub.Usage.ConsumedOperations, workers*perWorker)
	}
}
