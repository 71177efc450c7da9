package v1

import (
	"fmt"
	"sync"

	"github.com/talalink/webapp/internal/core/domain"
)

// MaintenanceService tracks repair tasks through their lifecycle
// (Pending -> In Progress -> Completed). The backend has no maintenance
// endpoints yet, so the hub runs on seeded in-memory data behind the same
// service boundary the eventual API-backed version will use.
type MaintenanceService struct {
	mu    sync.Mutex
	tasks []domain.RepairTask
}

// NewMaintenanceService creates the service with the demo task set shown on
// the maintenance hub.
func NewMaintenanceService() *MaintenanceService {
	return &MaintenanceService{
		tasks: []domain.RepairTask{
			{ID: 1, Direction: domain.RepairIncoming, Item: "Solar Inverter", Client: "John Doe", Status: domain.RepairPending, Date: "2026-02-10"},
			{ID: 2, Direction: domain.RepairIncoming, Item: "Water Pump", Client: "Jane Smith", Status: domain.RepairInProgress, Date: "2026-02-08"},
			{ID: 3, Direction: domain.RepairOutgoing, Item: "Laptop Battery", Artisan: "TechFix Thika", Status: domain.RepairCompleted, Date: "2026-02-05"},
		},
	}
}

// Tasks returns the tasks for one tab (incoming or outgoing).
func (s *MaintenanceService) Tasks(direction string) []domain.RepairTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.RepairTask, 0)
	for _, t := range s.tasks {
		if t.Direction == direction {
			out = append(out, t)
		}
	}
	return out
}

// PendingCount returns how many incoming tasks are not yet completed,
// for the dashboard stat card.
func (s *MaintenanceService) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.tasks {
		if t.Direction == domain.RepairIncoming && t.Status != domain.RepairCompleted {
			n++
		}
	}
	return n
}

// Advance moves a task to its next status. Completed tasks stay completed.
func (s *MaintenanceService) Advance(id int) (*domain.RepairTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		switch s.tasks[i].Status {
		case domain.RepairPending:
			s.tasks[i].Status = domain.RepairInProgress
		case domain.RepairInProgress:
			s.tasks[i].Status = domain.RepairCompleted
		}
		t := s.tasks[i]
		return &t, nil
	}
	return nil, fmt.Errorf("advance task %d: %w", id, ErrUnknownTask)
}
