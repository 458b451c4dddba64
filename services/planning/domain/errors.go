package domain

import "errors"

// Sentinel errors for the planning domain. Use errors.Is() to check these.
var (
	// ErrInvalidAlpha indicates a smoothing factor outside [0, 1].
	ErrInvalidAlpha = errors.New("smoothing factor must be between 0 and 1")

	// ErrInvalidHorizon indicates a non-positive forecast horizon.
	ErrInvalidHorizon = errors.New("forecast horizon must be positive")

	// ErrMachineNotFound indicates the requested machine does not exist.
	ErrMachineNotFound = errors.New("machine not found")

	// ErrMachineAlreadyExists indicates a machine with the same name already exists.
	ErrMachineAlreadyExists = errors.New("machine already exists")

	// ErrInvalidMachineStatus indicates an unrecognized machine status value.
	ErrInvalidMachineStatus = errors.New("invalid machine status")

	// ErrNoAvailableMachines indicates assignment was requested with no
	// machine in the available state.
	ErrNoAvailableMachines = errors.New("no available machines")
)
