package reporting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mamadbah2/logistics/internal/domain/models"
	"github.com/mamadbah2/logistics/internal/repository/memory"
	"github.com/mamadbah2/logistics/internal/service/optimizer"
)

type fakeSnapshots struct {
	saved   []models.CostSnapshot
	saveErr error
}

func (f *fakeSnapshots) SaveSnapshot(_ context.Context, report models.CostReport, source string) (models.CostSnapshot, error) {
	if f.saveErr != nil {
		return models.CostSnapshot{}, f.saveErr
	}
	snap := models.CostSnapshot{ID: "snap-1", Report: report, Source: source, CreatedAt: time.Now()}
	f.saved = append(f.saved, snap)
	return snap, nil
}

func (f *fakeSnapshots) LatestSnapshot(_ context.Context) (models.CostSnapshot, error) {
	if len(f.saved) == 0 {
		return models.CostSnapshot{}, errors.New("none")
	}
	return f.saved[len(f.saved)-1], nil
}

type fakeNotifier struct {
	to, body string
	err      error
}

func (f *fakeNotifier) SendText(_ context.Context, to, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.to, f.body = to, body
	return "wamid.1", nil
}

func demoOptimizer(t *testing.T) *optimizer.Service {
	t.Helper()
	repo := memory.NewInventoryRepository()
	if err := repo.ReplaceRecords(context.Background(), memory.DemoRecords()); err != nil {
		t.Fatal(err)
	}
	svc, err := optimizer.NewService(repo, models.CostParams{Distance: 120, RatePerKm: 3.5}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestSummary(t *testing.T) {
	eoqC, totalC := 519.615, 1459.23
	report := models.CostReport{
		Params:        models.CostParams{Distance: 120, RatePerKm: 3.5},
		TransportCost: 420,
		Rows: []models.CostedRecord{
			{InventoryRecord: models.InventoryRecord{Product: "C"}, EOQ: &eoqC, TotalAnnualCost: &totalC},
			{InventoryRecord: models.InventoryRecord{Product: "X"}},
		},
		BestProduct: "C",
		GeneratedAt: time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC),
	}

	got := Summary(report)
	for _, want := range []string{"2026-10-17", "2 products", "420.00", "120 km x 3.5/km", "Most cost-effective: C", "EOQ 520", "total 1459.23", "1 product(s) N/A"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary %q missing %q", got, want)
		}
	}

	empty := Summary(models.CostReport{})
	if !strings.Contains(empty, "No product could be evaluated") {
		t.Errorf("unexpected empty summary %q", empty)
	}
}

func TestPublish_SnapshotAndNotify(t *testing.T) {
	snaps := &fakeSnapshots{}
	notifier := &fakeNotifier{}
	svc := NewService(demoOptimizer(t), snaps, notifier, "48500100200", nil)

	result, err := svc.Publish(context.Background(), "scheduler")
	if err != nil {
		t.Fatal(err)
	}

	if result.SnapshotID != "snap-1" || result.MessageID != "wamid.1" {
		t.Errorf("unexpected result %+v", result)
	}
	if len(snaps.saved) != 1 || snaps.saved[0].Source != "scheduler" || snaps.saved[0].Report.BestProduct != "C" {
		t.Errorf("unexpected snapshots %+v", snaps.saved)
	}
	if notifier.to != "48500100200" || !strings.Contains(notifier.body, "Most cost-effective: C") {
		t.Errorf("unexpected notification to=%s body=%q", notifier.to, notifier.body)
	}
}

func TestPublish_CollectsFailures(t *testing.T) {
	snapErr := errors.New("mongo down")
	sendErr := errors.New("meta down")
	svc := NewService(demoOptimizer(t), &fakeSnapshots{saveErr: snapErr}, &fakeNotifier{err: sendErr}, "1", nil)

	result, err := svc.Publish(context.Background(), "scheduler")
	if !errors.Is(err, snapErr) || !errors.Is(err, sendErr) {
		t.Fatalf("expected both failures, got %v", err)
	}
	if result.Summary == "" {
		t.Error("summary must still be produced")
	}
}

func TestPublish_WithoutCollaborators(t *testing.T) {
	svc := NewService(demoOptimizer(t), nil, nil, "", nil)

	result, err := svc.Publish(context.Background(), "manual")
	if err != nil {
		t.Fatal(err)
	}
	if result.SnapshotID != "" || result.MessageID != "" {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestSnapshot_Disabled(t *testing.T) {
	svc := NewService(demoOptimizer(t), nil, nil, "", nil)

	if svc.SnapshotsEnabled() {
		t.Fatal("snapshots must be disabled")
	}
	if _, err := svc.Snapshot(context.Background(), "api"); !errors.Is(err, ErrSnapshotsDisabled) {
		t.Errorf("expected ErrSnapshotsDisabled, got %v", err)
	}
	if _, err := svc.LatestSnapshot(context.Background()); !errors.Is(err, ErrSnapshotsDisabled) {
		t.Errorf("expected ErrSnapshotsDisabled, got %v", err)
	}
}

func TestSnapshot_Saves(t *testing.T) {
	snaps := &fakeSnapshots{}
	svc := NewService(demoOptimizer(t), snaps, nil, "", nil)

	snap, err := svc.Snapshot(context.Background(), "api")
	if err != nil {
		t.Fatal(err)
	}
	latest, err := svc.LatestSnapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != snap.ID || len(latest.Report.Rows) != 3 {
		t.Errorf("unexpected latest snapshot %+v", latest)
	}
}
