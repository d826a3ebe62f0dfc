package entity

import (
	"time"
)

// ProductionRun 生产批次实体
type ProductionRun struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	RunID          string     `json:"runId" gorm:"size:64;not null;uniqueIndex:uq_production_runs_run_id"`
	MachineID      string     `json:"machineId" gorm:"size:36;not null;index"`
	PartNumber     string     `json:"partNumber" gorm:"size:64;not null"`
	PartName       string     `json:"partName" gorm:"size:128;not null"`
	Material       string     `json:"material" gorm:"size:64;not null"`
	TargetQuantity float64    `json:"targetQuantity" gorm:"not null"`
	ActualQuantity float64    `json:"actualQuantity" gorm:"not null;default:0"`
	Status         string     `json:"status" gorm:"size:16;not null;default:scheduled"`
	StartTime      *time.Time `json:"startTime,omitempty"`
	EndTime        *time.Time `json:"endTime,omitempty"`
	Operator       string     `json:"operator,omitempty" gorm:"size:128"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	// 关联
	Machine *Machine `json:"machine,omitempty" gorm:"foreignKey:MachineID;references:ID"`
}

func (ProductionRun) TableName() string {
	return "production_runs"
}

// RunStatus 批次状态
const (
	RunStatusScheduled = "scheduled"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusPaused    = "paused"
	RunStatusCancelled = "cancelled"
)

// RunStatuses is the closed set accepted for ProductionRun.Status.
var RunStatuses = []string{
	RunStatusScheduled,
	RunStatusRunning,
	RunStatusCompleted,
	RunStatusPaused,
	RunStatusCancelled,
}
