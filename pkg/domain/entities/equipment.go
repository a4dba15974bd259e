package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EquipmentID represents a unique equipment identifier
type EquipmentID string

// EquipmentStatus represents the operational status of equipment
type EquipmentStatus int

const (
	Operational EquipmentStatus = iota
	UnderMaintenance
	Decommissioned
)

// String method for EquipmentStatus enum
func (s EquipmentStatus) String() string {
	switch s {
	case Operational:
		return "Operational"
	case UnderMaintenance:
		return "UnderMaintenance"
	case Decommissioned:
		return "Decommissioned"
	default:
		return "Unknown"
	}
}

// Equipment represents a piece of plant equipment
type Equipment struct {
	ID          EquipmentID
	Name        string
	Type        string
	Location    string
	InstallDate time.Time
	Status      EquipmentStatus
}

// NewEquipment creates a validated Equipment
func NewEquipment(id EquipmentID, name, equipmentType, location string, installDate time.Time, status EquipmentStatus) (*Equipment, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("equipment id cannot be empty")
	}
	if equipmentType == "" {
		return nil, fmt.Errorf("equipment type cannot be empty")
	}

	return &Equipment{
		ID:          id,
		Name:        name,
		Type:        equipmentType,
		Location:    location,
		InstallDate: installDate,
		Status:      status,
	}, nil
}

// DowntimeEvent represents a single equipment failure and its repair
type DowntimeEvent struct {
	ID          string
	EquipmentID EquipmentID
	FailureAt   time.Time
	RepairStart time.Time
	RepairEnd   time.Time
	FailureType string
	RepairCost  decimal.Decimal
}

// NewDowntimeEvent creates a validated DowntimeEvent
func NewDowntimeEvent(id string, equipmentID EquipmentID, failureAt, repairStart, repairEnd time.Time, failureType string, repairCost decimal.Decimal) (*DowntimeEvent, error) {
	if id == "" {
		return nil, fmt.Errorf("downtime event id cannot be empty")
	}
	if string(equipmentID) == "" {
		return nil, fmt.Errorf("equipment id cannot be empty")
	}
	if repairStart.Before(failureAt) {
		return nil, fmt.Errorf("repair start %v cannot precede failure timestamp %v", repairStart, failureAt)
	}
	if repairEnd.Before(repairStart) {
		return nil, fmt.Errorf("repair end %v cannot precede repair start %v", repairEnd, repairStart)
	}
	if repairCost.IsNegative() {
		return nil, fmt.Errorf("repair cost cannot be negative, got %s", repairCost)
	}

	return &DowntimeEvent{
		ID:          id,
		EquipmentID: equipmentID,
		FailureAt:   failureAt,
		RepairStart: repairStart,
		RepairEnd:   repairEnd,
		FailureType: failureType,
		RepairCost:  repairCost,
	}, nil
}

// DowntimeHours returns the repair duration in hours
func (e *DowntimeEvent) DowntimeHours() float64 {
	return e.RepairEnd.Sub(e.RepairStart).Hours()
}
