package entity

import (
	"time"
)

// Employee 员工实体
type Employee struct {
	ID                string    `json:"id" gorm:"primaryKey;size:36"`
	EmployeeID        string    `json:"employeeId" gorm:"size:64;not null;uniqueIndex:uq_employees_employee_id"`
	FirstName         string    `json:"firstName" gorm:"size:64;not null"`
	LastName          string    `json:"lastName" gorm:"size:64;not null"`
	Email             string    `json:"email" gorm:"size:128;not null;uniqueIndex:uq_employees_email"`
	Department        string    `json:"department" gorm:"size:32;not null"`
	Role              string    `json:"role" gorm:"size:32;not null"`
	HireDate          time.Time `json:"hireDate" gorm:"not null"`
	Shift             string    `json:"shift" gorm:"size:16;not null;default:Morning"`
	// 无 default 标签：gorm 会把带 default 的零值字段从 INSERT 中剔除，
	// active=false 会被列默认值覆盖。默认值由服务层显式填充。
	Active            bool      `json:"active" gorm:"not null"`
	AssignedMachineID string    `json:"assignedMachineId,omitempty" gorm:"size:36;index"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`

	// 关联
	AssignedMachine *Machine `json:"assignedMachine,omitempty" gorm:"foreignKey:AssignedMachineID;references:ID"`
}

func (Employee) TableName() string {
	return "employees"
}

// Department 部门
const (
	DepartmentProduction  = "Production"
	DepartmentQuality     = "Quality"
	DepartmentMaintenance = "Maintenance"
	DepartmentLogistics   = "Logistics"
	DepartmentManagement  = "Management"
)

// Departments is the closed set accepted for Employee.Department.
var Departments = []string{
	DepartmentProduction,
	DepartmentQuality,
	DepartmentMaintenance,
	DepartmentLogistics,
	DepartmentManagement,
}

// EmployeeRole 岗位
const (
	RoleOperator         = "Operator"
	RoleTechnician       = "Technician"
	RoleQualityInspector = "Quality Inspector"
	RoleSupervisor       = "Supervisor"
	RoleEngineer         = "Engineer"
	RoleManager          = "Manager"
)

// EmployeeRoles is the closed set accepted for Employee.Role.
var EmployeeRoles = []string{
	RoleOperator,
	RoleTechnician,
	RoleQualityInspector,
	RoleSupervisor,
	RoleEngineer,
	RoleManager,
}

// Shift 班次
const (
	ShiftMorning   = "Morning"
	ShiftAfternoon = "Afternoon"
	ShiftNight     = "Night"
)

// Shifts is the closed set accepted for Employee.Shift.
var Shifts = []string{
	ShiftMorning,
	ShiftAfternoon,
	ShiftNight,
}
