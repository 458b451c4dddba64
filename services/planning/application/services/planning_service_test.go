package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	auditmodels "github.com/ghuser/smartfactory/services/audit/domain/models"
	plandomain "github.com/ghuser/smartfactory/services/planning/domain"
	"github.com/ghuser/smartfactory/services/planning/domain/models"
)

// fakePlanningRepo is an in-memory PlanningRepository. A single mutex mirrors
// the transaction the postgres implementation runs PromotePending in.
type fakePlanningRepo struct {
	mu          sync.Mutex
	pending     []models.PendingOrder
	processing  []models.PendingOrder
	machines    []models.Machine
	assignments map[[2]uuid.UUID]models.ProductionAssignment
	sales       []models.SalesPoint
}

func newFakePlanningRepo() *fakePlanningRepo {
	return &fakePlanningRepo{assignments: make(map[[2]uuid.UUID]models.ProductionAssignment)}
}

func (f *fakePlanningRepo) PromotePending(_ context.Context, k int, score func(models.PendingOrder) float64) ([]models.PendingOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.pending {
		p := score(f.pending[i])
		f.pending[i].Priority = &p
	}
	sort.SliceStable(f.pending, func(i, j int) bool {
		if *f.pending[i].Priority != *f.pending[j].Priority {
			return *f.pending[i].Priority < *f.pending[j].Priority
		}
		return f.pending[i].CreatedAt.Before(f.pending[j].CreatedAt)
	})
	if k > len(f.pending) {
		k = len(f.pending)
	}

	promoted := append([]models.PendingOrder(nil), f.pending[:k]...)
	f.processing = append(f.processing, promoted...)
	f.pending = f.pending[k:]
	return promoted, nil
}

func (f *fakePlanningRepo) ProcessingOrders(_ context.Context) ([]models.PendingOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.PendingOrder(nil), f.processing...), nil
}

func (f *fakePlanningRepo) CreateMachine(_ context.Context, machine *models.Machine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.machines {
		if m.Name == machine.Name {
			return plandomain.ErrMachineAlreadyExists
		}
	}
	f.machines = append(f.machines, *machine)
	return nil
}

func (f *fakePlanningRepo) Machines(_ context.Context, status *models.MachineStatus) ([]models.Machine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Machine
	for _, m := range f.machines {
		if status != nil && m.Status != *status {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakePlanningRepo) UpsertAssignments(_ context.Context, assignments []models.ProductionAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range assignments {
		f.assignments[[2]uuid.UUID{a.OrderID, a.MachineID}] = a
	}
	return nil
}

func (f *fakePlanningRepo) Plan(_ context.Context) ([]models.PlanEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PlanEntry
	for _, a := range f.assignments {
		out = append(out, models.PlanEntry{
			OrderID: a.OrderID, MachineID: a.MachineID,
			StartTime: a.StartTime, EndTime: a.EndTime,
		})
	}
	return out, nil
}

func (f *fakePlanningRepo) SalesHistory(_ context.Context) ([]models.SalesPoint, error) {
	return append([]models.SalesPoint(nil), f.sales...), nil
}

func (f *fakePlanningRepo) addPending(orderNo string, dueInDays, processingDays int, createdAt time.Time, base time.Time) uuid.UUID {
	due := base.AddDate(0, 0, dueInDays)
	id := uuid.New()
	f.pending = append(f.pending, models.PendingOrder{
		ID: id, OrderNo: orderNo, DueDate: &due,
		ProcessingDays: processingDays, CreatedAt: createdAt,
	})
	return id
}

func (f *fakePlanningRepo) addMachine(name string, status models.MachineStatus) uuid.UUID {
	id := uuid.New()
	f.machines = append(f.machines, models.Machine{
		ID: id, Name: name, Status: status,
		Capacity: decimal.NewFromInt(100), CreatedAt: time.Now().UTC(),
	})
	return id
}

// nopRecorder satisfies the audit Recorder without persistence.
type nopRecorder struct {
	mu      sync.Mutex
	entries []auditmodels.Entry
}

func (n *nopRecorder) Record(_ context.Context, entry auditmodels.Entry) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, entry)
}

func newTestService(repo *fakePlanningRepo, base time.Time) *PlanningService {
	svc := NewPlanningService(repo, &nopRecorder{}, 0.2, 30, 5)
	svc.now = func() time.Time { return base }
	return svc
}

func TestForecastDemand(t *testing.T) {
	ctx := context.Background()
	day1 := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("single observation flags insufficient history", func(t *testing.T) {
		repo := newFakePlanningRepo()
		repo.sales = []models.SalesPoint{{RecordedOn: day1, Quantity: 10}}
		svc := newTestService(repo, day1)

		result, err := svc.ForecastDemand(ctx, 0.5, 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.InsufficientHistory || len(result.Points) != 0 {
			t.Fatalf("expected insufficient history, got %+v", result)
		}
	})

	t.Run("points continue daily from the last observation", func(t *testing.T) {
		repo := newFakePlanningRepo()
		repo.sales = []models.SalesPoint{
			{RecordedOn: day1, Quantity: 10},
			{RecordedOn: day1.AddDate(0, 0, 1), Quantity: 20},
		}
		svc := newTestService(repo, day1)

		result, err := svc.ForecastDemand(ctx, 0.5, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Points) != 3 {
			t.Fatalf("expected 3 points, got %d", len(result.Points))
		}
		for i, p := range result.Points {
			want := day1.AddDate(0, 0, 2+i)
			if !p.Date.Equal(want) {
				t.Fatalf("point %d: expected date %v, got %v", i, want, p.Date)
			}
			// level = 0.5*20 + 0.5*10
			if p.Quantity != 15 {
				t.Fatalf("point %d: expected 15, got %v", i, p.Quantity)
			}
		}
	})

	t.Run("rejects alpha outside unit interval", func(t *testing.T) {
		svc := newTestService(newFakePlanningRepo(), day1)
		for _, alpha := range []float64{-0.1, 1.1} {
			if _, err := svc.ForecastDemand(ctx, alpha, 7); !errors.Is(err, plandomain.ErrInvalidAlpha) {
				t.Fatalf("alpha %v: expected ErrInvalidAlpha, got %v", alpha, err)
			}
		}
	})

	t.Run("rejects negative horizon", func(t *testing.T) {
		svc := newTestService(newFakePlanningRepo(), day1)
		if _, err := svc.ForecastDemand(ctx, 0.5, -1); !errors.Is(err, plandomain.ErrInvalidHorizon) {
			t.Fatalf("expected ErrInvalidHorizon, got %v", err)
		}
	})

	t.Run("zero inputs fall back to defaults", func(t *testing.T) {
		repo := newFakePlanningRepo()
		repo.sales = []models.SalesPoint{
			{RecordedOn: day1, Quantity: 10},
			{RecordedOn: day1.AddDate(0, 0, 1), Quantity: 10},
		}
		svc := newTestService(repo, day1)

		result, err := svc.ForecastDemand(ctx, 0, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Points) != 30 {
			t.Fatalf("expected default horizon of 30, got %d", len(result.Points))
		}
	})
}

func TestPromoteTopOrders(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("promotes the k smallest scores", func(t *testing.T) {
		repo := newFakePlanningRepo()
		// Larger slack scores smaller, so the two most distant due dates win.
		distant := repo.addPending("SO-DISTANT", 60, 2, base, base)
		middle := repo.addPending("SO-MIDDLE", 20, 2, base, base)
		repo.addPending("SO-TIGHT", 2, 2, base, base)
		svc := newTestService(repo, base)

		promoted, err := svc.PromoteTopOrders(ctx, 2, "li.na")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if promoted != 2 {
			t.Fatalf("expected 2 promoted, got %d", promoted)
		}

		processing, _ := repo.ProcessingOrders(ctx)
		got := map[uuid.UUID]bool{}
		for _, o := range processing {
			got[o.ID] = true
		}
		if !got[distant] || !got[middle] {
			t.Fatalf("expected the two smallest scores promoted, got %v", processing)
		}
	})

	t.Run("every pending order gets a persisted score", func(t *testing.T) {
		repo := newFakePlanningRepo()
		repo.addPending("SO-1", 5, 2, base, base)
		repo.addPending("SO-2", 9, 3, base, base)
		repo.addPending("SO-3", 1, 1, base, base)
		svc := newTestService(repo, base)

		if _, err := svc.PromoteTopOrders(ctx, 1, "li.na"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, o := range append(repo.pending, repo.processing...) {
			if o.Priority == nil {
				t.Fatalf("order %s left unscored", o.OrderNo)
			}
		}
	})

	t.Run("equal scores break ties by creation time", func(t *testing.T) {
		repo := newFakePlanningRepo()
		older := repo.addPending("SO-OLDER", 10, 2, base.Add(-time.Hour), base)
		repo.addPending("SO-NEWER", 10, 2, base, base)
		svc := newTestService(repo, base)

		if _, err := svc.PromoteTopOrders(ctx, 1, "li.na"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		processing, _ := repo.ProcessingOrders(ctx)
		if len(processing) != 1 || processing[0].ID != older {
			t.Fatalf("expected the older order promoted, got %v", processing)
		}
	})

	t.Run("k above pending count promotes everything", func(t *testing.T) {
		repo := newFakePlanningRepo()
		repo.addPending("SO-1", 5, 2, base, base)
		svc := newTestService(repo, base)

		promoted, err := svc.PromoteTopOrders(ctx, 10, "li.na")
		if err != nil || promoted != 1 {
			t.Fatalf("expected 1 promoted, got %d / %v", promoted, err)
		}
	})

	t.Run("zero k falls back to the configured batch size", func(t *testing.T) {
		repo := newFakePlanningRepo()
		for i := 0; i < 8; i++ {
			repo.addPending("SO", i+1, 2, base.Add(time.Duration(i)*time.Minute), base)
		}
		svc := newTestService(repo, base)

		promoted, err := svc.PromoteTopOrders(ctx, 0, "li.na")
		if err != nil || promoted != 5 {
			t.Fatalf("expected batch default of 5, got %d / %v", promoted, err)
		}
	})
}

func TestAssignPromoted(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("round-robins across available machines only", func(t *testing.T) {
		repo := newFakePlanningRepo()
		m1 := repo.addMachine("lathe-1", models.MachineAvailable)
		m2 := repo.addMachine("mill-1", models.MachineAvailable)
		repo.addMachine("press-1", models.MachineInMaintenance)
		repo.addPending("SO-1", 5, 3, base, base)
		repo.addPending("SO-2", 6, 2, base, base)
		repo.addPending("SO-3", 7, 1, base, base)
		svc := newTestService(repo, base)

		if _, err := svc.PromoteTopOrders(ctx, 3, "li.na"); err != nil {
			t.Fatalf("promote: %v", err)
		}
		assigned, err := svc.AssignPromoted(ctx, "li.na")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if assigned != 3 {
			t.Fatalf("expected 3 assignments, got %d", assigned)
		}

		plan, _ := svc.ProductionPlan(ctx)
		usage := map[uuid.UUID]int{}
		for _, e := range plan {
			usage[e.MachineID]++
			if e.EndTime.Before(e.StartTime) {
				t.Fatalf("assignment window inverted: %v", e)
			}
		}
		if usage[m1]+usage[m2] != 3 {
			t.Fatalf("assignment used an unavailable machine: %v", usage)
		}
		if usage[m1] == 0 || usage[m2] == 0 {
			t.Fatalf("expected both machines used, got %v", usage)
		}
	})

	t.Run("window spans the order's processing days", func(t *testing.T) {
		repo := newFakePlanningRepo()
		repo.addMachine("lathe-1", models.MachineAvailable)
		repo.addPending("SO-1", 5, 4, base, base)
		svc := newTestService(repo, base)

		if _, err := svc.PromoteTopOrders(ctx, 1, "li.na"); err != nil {
			t.Fatalf("promote: %v", err)
		}
		if _, err := svc.AssignPromoted(ctx, "li.na"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		plan, _ := svc.ProductionPlan(ctx)
		if len(plan) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(plan))
		}
		if want := base.AddDate(0, 0, 4); !plan[0].EndTime.Equal(want) {
			t.Fatalf("expected end %v, got %v", want, plan[0].EndTime)
		}
	})

	t.Run("no available machines", func(t *testing.T) {
		repo := newFakePlanningRepo()
		repo.addMachine("press-1", models.MachineDisabled)
		svc := newTestService(repo, base)

		_, err := svc.AssignPromoted(ctx, "li.na")
		if !errors.Is(err, plandomain.ErrNoAvailableMachines) {
			t.Fatalf("expected ErrNoAvailableMachines, got %v", err)
		}
	})

	t.Run("nothing promoted is a no-op", func(t *testing.T) {
		repo := newFakePlanningRepo()
		repo.addMachine("lathe-1", models.MachineAvailable)
		svc := newTestService(repo, base)

		assigned, err := svc.AssignPromoted(ctx, "li.na")
		if err != nil || assigned != 0 {
			t.Fatalf("expected 0/nil, got %d/%v", assigned, err)
		}
	})
}

func TestRegisterMachine(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("registers available machine", func(t *testing.T) {
		svc := newTestService(newFakePlanningRepo(), base)
		machine, err := svc.RegisterMachine(ctx, "lathe-7", decimal.NewFromInt(80), "li.na")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if machine.Status != models.MachineAvailable {
			t.Fatalf("expected available, got %s", machine.Status)
		}
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		svc := newTestService(newFakePlanningRepo(), base)
		if _, err := svc.RegisterMachine(ctx, "lathe-7", decimal.NewFromInt(80), "li.na"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := svc.RegisterMachine(ctx, "lathe-7", decimal.NewFromInt(80), "li.na")
		if !errors.Is(err, plandomain.ErrMachineAlreadyExists) {
			t.Fatalf("expected ErrMachineAlreadyExists, got %v", err)
		}
	})
}

func TestListMachines(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakePlanningRepo()
	repo.addMachine("lathe-1", models.MachineAvailable)
	repo.addMachine("mill-1", models.MachineInMaintenance)
	svc := newTestService(repo, base)

	t.Run("filters by status", func(t *testing.T) {
		machines, err := svc.ListMachines(ctx, "in_maintenance")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(machines) != 1 || machines[0].Name != "mill-1" {
			t.Fatalf("unexpected machines: %v", machines)
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := svc.ListMachines(ctx, "broken")
		if !errors.Is(err, plandomain.ErrInvalidMachineStatus) {
			t.Fatalf("expected ErrInvalidMachineStatus, got %v", err)
		}
	})

	t.Run("empty status lists everything", func(t *testing.T) {
		machines, err := svc.ListMachines(ctx, "")
		if err != nil || len(machines) != 2 {
			t.Fatalf("expected 2 machines, got %d / %v", len(machines), err)
		}
	})
}
