package entity

import (
	"time"
)

// Machine 注塑机实体
type Machine struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	MachineID    string    `json:"machineId" gorm:"size:64;not null;uniqueIndex:uq_machines_machine_id"`
	Name         string    `json:"name" gorm:"size:128;not null"`
	Model        string    `json:"model,omitempty" gorm:"size:128"`
	Manufacturer string    `json:"manufacturer,omitempty" gorm:"size:128"`
	Tonnage      float64   `json:"tonnage,omitempty" gorm:"type:decimal(10,2)"`
	Location     string    `json:"location,omitempty" gorm:"size:128"`
	Status       string    `json:"status" gorm:"size:16;not null;default:operational"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Machine) TableName() string {
	return "machines"
}

// MachineStatus 设备状态
const (
	MachineStatusOperational = "operational"
	MachineStatusMaintenance = "maintenance"
	MachineStatusDown        = "down"
	MachineStatusIdle        = "idle"
)

// MachineStatuses is the closed set accepted for Machine.Status.
var MachineStatuses = []string{
	MachineStatusOperational,
	MachineStatusMaintenance,
	MachineStatusDown,
	MachineStatusIdle,
}
