package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/ghuser/smartfactory/services/planning/domain"
)

// MachineStatus is the canonical machine availability vocabulary.
type MachineStatus string

const (
	MachineAvailable     MachineStatus = "available"
	MachineInMaintenance MachineStatus = "in_maintenance"
	MachineDisabled      MachineStatus = "disabled"
)

// MachineStatuses lists every recognized value.
var MachineStatuses = []MachineStatus{MachineAvailable, MachineInMaintenance, MachineDisabled}

// String returns the underlying string value.
func (s MachineStatus) String() string {
	return string(s)
}

// ParseMachineStatus validates s against the recognized vocabulary.
func ParseMachineStatus(s string) (MachineStatus, error) {
	for _, known := range MachineStatuses {
		if MachineStatus(s) == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidMachineStatus, s)
}

// Machine is a production resource the scheduler can assign orders to.
// Only machines in the available state receive assignments.
type Machine struct {
	ID        uuid.UUID
	Name      string
	Status    MachineStatus
	Capacity  decimal.Decimal
	CreatedAt time.Time
}

// NewMachine constructs an available machine with generated ID and current timestamp.
func NewMachine(name string, capacity decimal.Decimal) (*Machine, error) {
	if name == "" {
		return nil, fmt.Errorf("machine name must not be empty")
	}
	if capacity.IsNegative() {
		return nil, fmt.Errorf("machine capacity must be non-negative, got %s", capacity)
	}
	return &Machine{
		ID:        uuid.New(),
		Name:      name,
		Status:    MachineAvailable,
		Capacity:  capacity,
		CreatedAt: time.Now().UTC(),
	}, nil
}
