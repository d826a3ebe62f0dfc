package entity

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Measurement 单项测量记录
type Measurement struct {
	Parameter   string  `json:"parameter"`
	TargetValue float64 `json:"targetValue"`
	Unit        string  `json:"unit"`
	Tolerance   float64 `json:"tolerance"`
	ActualValue float64 `json:"actualValue"`
	Status      string  `json:"status"`
}

// Measurements 用于PostgreSQL JSONB类型，保持录入顺序
type Measurements []Measurement

func (m Measurements) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Measurements) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// QualityCheck 质检记录实体
type QualityCheck struct {
	ID               string       `json:"id" gorm:"primaryKey;size:36"`
	CheckID          string       `json:"checkId" gorm:"size:64;not null;uniqueIndex:uq_quality_checks_check_id"`
	RunID            string       `json:"runId" gorm:"size:36;not null;index"`
	MachineID        string       `json:"machineId" gorm:"size:36;not null;index"`
	EmployeeID       string       `json:"employeeId" gorm:"size:36;not null;index"`
	CheckDate        time.Time    `json:"checkDate" gorm:"not null;index"`
	CheckType        string       `json:"checkType" gorm:"size:32;not null"`
	Result           string       `json:"result" gorm:"size:16;not null"`
	Measurements     Measurements `json:"measurements" gorm:"type:jsonb"`
	Notes            string       `json:"notes,omitempty" gorm:"size:1000"`
	DefectsFound     int          `json:"defectsFound" gorm:"not null;default:0"`
	CorrectiveAction string       `json:"correctiveAction,omitempty" gorm:"size:500"`
	NextCheckDate    *time.Time   `json:"nextCheckDate,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`

	// 关联
	Run      *ProductionRun `json:"run,omitempty" gorm:"foreignKey:RunID;references:ID"`
	Machine  *Machine       `json:"machine,omitempty" gorm:"foreignKey:MachineID;references:ID"`
	Employee *Employee      `json:"employee,omitempty" gorm:"foreignKey:EmployeeID;references:ID"`
}

func (QualityCheck) TableName() string {
	return "quality_checks"
}

// CheckType 检验类型
const (
	CheckTypeDimensional = "Dimensional"
	CheckTypeVisual      = "Visual"
	CheckTypeFunctional  = "Functional"
	CheckTypeMaterial    = "Material"
)

// CheckTypes is the closed set accepted for QualityCheck.CheckType.
var CheckTypes = []string{
	CheckTypeDimensional,
	CheckTypeVisual,
	CheckTypeFunctional,
	CheckTypeMaterial,
}

// CheckResult 检验结论
const (
	ResultPass   = "Pass"
	ResultFail   = "Fail"
	ResultRework = "Rework"
	ResultHold   = "Hold"
)

// CheckResults is the closed set accepted for QualityCheck.Result.
var CheckResults = []string{
	ResultPass,
	ResultFail,
	ResultRework,
	ResultHold,
}

// 注意：notes/correctiveAction 的长度上限
const (
	NotesMaxLength            = 1000
	CorrectiveActionMaxLength = 500
)
