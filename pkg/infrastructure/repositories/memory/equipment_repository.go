package memory

import (
	"fmt"

	"github.com/nmehta/opsengine/pkg/domain/entities"
	"github.com/nmehta/opsengine/pkg/domain/repositories"
)

// EquipmentRepository provides in-memory equipment storage
type EquipmentRepository struct {
	equipment    []entities.Equipment
	equipmentMap map[entities.EquipmentID]int
}

// NewEquipmentRepository creates a new in-memory equipment repository
func NewEquipmentRepository(expected int) *EquipmentRepository {
	return &EquipmentRepository{
		equipment:    make([]entities.Equipment, 0, expected),
		equipmentMap: make(map[entities.EquipmentID]int, expected),
	}
}

// Verify interface compliance
var _ repositories.EquipmentRepository = (*EquipmentRepository)(nil)

// LoadEquipment loads equipment into the repository
func (r *EquipmentRepository) LoadEquipment(equipment []*entities.Equipment) error {
	for _, e := range equipment {
		if _, exists := r.equipmentMap[e.ID]; exists {
			return fmt.Errorf("duplicate equipment id: %s", e.ID)
		}
		r.equipmentMap[e.ID] = len(r.equipment)
		r.equipment = append(r.equipment, *e)
	}
	return nil
}

// GetEquipment returns equipment master data by id
func (r *EquipmentRepository) GetEquipment(id entities.EquipmentID) (*entities.Equipment, error) {
	index, exists := r.equipmentMap[id]
	if !exists {
		return nil, fmt.Errorf("equipment not found: %s", id)
	}
	return &r.equipment[index], nil
}

// GetAllEquipment returns all equipment
func (r *EquipmentRepository) GetAllEquipment() ([]*entities.Equipment, error) {
	var out []*entities.Equipment
	for i := range r.equipment {
		out = append(out, &r.equipment[i])
	}
	return out, nil
}

// DowntimeRepository provides in-memory downtime event storage
type DowntimeRepository struct {
	events      []entities.DowntimeEvent
	byEquipment map[entities.EquipmentID][]int
}

// NewDowntimeRepository creates a new in-memory downtime repository
func NewDowntimeRepository(expected int) *DowntimeRepository {
	return &DowntimeRepository{
		events:      make([]entities.DowntimeEvent, 0, expected),
		byEquipment: make(map[entities.EquipmentID][]int),
	}
}

// Verify interface compliance
var _ repositories.DowntimeRepository = (*DowntimeRepository)(nil)

// LoadEvents loads downtime events into the repository
func (r *DowntimeRepository) LoadEvents(events []*entities.DowntimeEvent) error {
	for _, e := range events {
		r.byEquipment[e.EquipmentID] = append(r.byEquipment[e.EquipmentID], len(r.events))
		r.events = append(r.events, *e)
	}
	return nil
}

// GetEventsForEquipment returns the downtime history for one equipment id
func (r *DowntimeRepository) GetEventsForEquipment(id entities.EquipmentID) ([]*entities.DowntimeEvent, error) {
	var out []*entities.DowntimeEvent
	for _, idx := range r.byEquipment[id] {
		out = append(out, &r.events[idx])
	}
	return out, nil
}

// GetAllEvents returns all downtime events
func (r *DowntimeRepository) GetAllEvents() ([]*entities.DowntimeEvent, error) {
	var out []*entities.DowntimeEvent
	for i := range r.events {
		out = append(out, &r.events[i])
	}
	return out, nil
}
