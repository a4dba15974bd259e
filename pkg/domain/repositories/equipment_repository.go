package repositories

import "github.com/nmehta/opsengine/pkg/domain/entities"

// EquipmentRepository provides access to equipment master data
type EquipmentRepository interface {
	GetEquipment(id entities.EquipmentID) (*entities.Equipment, error)
	GetAllEquipment() ([]*entities.Equipment, error)
	LoadEquipment(equipment []*entities.Equipment) error
}

// DowntimeRepository provides access to downtime event history
type DowntimeRepository interface {
	GetEventsForEquipment(id entities.EquipmentID) ([]*entities.DowntimeEvent, error)
	GetAllEvents() ([]*entities.DowntimeEvent, error)
	LoadEvents(events []*entities.DowntimeEvent) error
}
