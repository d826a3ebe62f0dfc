package service

import (
	"context"
	"errors"
	"time"

	"github.com/fabworks/moldline/internal/apperr"
	"github.com/fabworks/moldline/internal/model/entity"
	"github.com/fabworks/moldline/internal/repository"
	"github.com/fabworks/moldline/internal/validation"
	"github.com/google/uuid"
)

// EmployeeService 员工服务
type EmployeeService struct {
	repo        *repository.EmployeeRepository
	machineRepo *repository.MachineRepository
}

// NewEmployeeService 创建员工服务
func NewEmployeeService(repo *repository.EmployeeRepository, machineRepo *repository.MachineRepository) *EmployeeService {
	return &EmployeeService{repo: repo, machineRepo: machineRepo}
}

// CreateEmployeeRequest 创建员工请求
type CreateEmployeeRequest struct {
	EmployeeID        string     `json:"employeeId"`
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	Email             string     `json:"email"`
	Department        string     `json:"department"`
	Role              string     `json:"role"`
	HireDate          *time.Time `json:"hireDate"`
	Shift             string     `json:"shift"`
	Active            *bool      `json:"active"`
	AssignedMachineID string     `json:"assignedMachineId"`
}

// UpdateEmployeeRequest 更新员工请求，只校验并写入携带的字段
type UpdateEmployeeRequest struct {
	EmployeeID        *string    `json:"employeeId"`
	FirstName         *string    `json:"firstName"`
	LastName          *string    `json:"lastName"`
	Email             *string    `json:"email"`
	Department        *string    `json:"department"`
	Role              *string    `json:"role"`
	HireDate          *time.Time `json:"hireDate"`
	Shift             *string    `json:"shift"`
	Active            *bool      `json:"active"`
	AssignedMachineID *string    `json:"assignedMachineId"`
}

func (r *UpdateEmployeeRequest) isEmpty() bool {
	return r.EmployeeID == nil && r.FirstName == nil && r.LastName == nil &&
		r.Email == nil && r.Department == nil && r.Role == nil &&
		r.HireDate == nil && r.Shift == nil && r.Active == nil &&
		r.AssignedMachineID == nil
}

func (s *EmployeeService) resolveMachine(ctx context.Context, value string) error {
	if _, err := s.machineRepo.FindByID(ctx, value); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.DanglingReference("assignedMachineId", value)
		}
		return err
	}
	return nil
}

// Create 创建员工
func (s *EmployeeService) Create(ctx context.Context, req *CreateEmployeeRequest) (*entity.Employee, error) {
	var missing validation.Missing
	missing.Check("employeeId", req.EmployeeID == "")
	missing.Check("firstName", req.FirstName == "")
	missing.Check("lastName", req.LastName == "")
	missing.Check("email", req.Email == "")
	missing.Check("department", req.Department == "")
	missing.Check("role", req.Role == "")
	missing.Check("hireDate", req.HireDate == nil)
	if err := missing.Err(); err != nil {
		return nil, err
	}

	if err := validation.MinLength("firstName", req.FirstName, 2); err != nil {
		return nil, err
	}
	if err := validation.MinLength("lastName", req.LastName, 2); err != nil {
		return nil, err
	}
	if err := validation.Email("email", req.Email); err != nil {
		return nil, err
	}
	if err := validation.Enum("department", req.Department, entity.Departments); err != nil {
		return nil, err
	}
	if err := validation.Enum("role", req.Role, entity.EmployeeRoles); err != nil {
		return nil, err
	}

	shift := req.Shift
	if shift == "" {
		shift = entity.ShiftMorning
	}
	if err := validation.Enum("shift", shift, entity.Shifts); err != nil {
		return nil, err
	}

	if req.AssignedMachineID != "" {
		if err := s.resolveMachine(ctx, req.AssignedMachineID); err != nil {
			return nil, err
		}
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now()
	employee := &entity.Employee{
		ID:                uuid.New().String(),
		EmployeeID:        req.EmployeeID,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Department:        req.Department,
		Role:              req.Role,
		HireDate:          *req.HireDate,
		Shift:             shift,
		Active:            active,
		AssignedMachineID: req.AssignedMachineID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, translate(err, "employee")
	}
	return s.Get(ctx, employee.ID)
}

// Get 获取员工详情
func (s *EmployeeService) Get(ctx context.Context, id string) (*entity.Employee, error) {
	if err := validation.DocumentID(id); err != nil {
		return nil, err
	}
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "employee")
	}
	return employee, nil
}

// List 获取员工列表，按姓氏排序
func (s *EmployeeService) List(ctx context.Context, department, role, shift string) ([]entity.Employee, error) {
	if department != "" {
		if err := validation.Enum("department", department, entity.Departments); err != nil {
			return nil, err
		}
	}
	if role != "" {
		if err := validation.Enum("role", role, entity.EmployeeRoles); err != nil {
			return nil, err
		}
	}
	if shift != "" {
		if err := validation.Enum("shift", shift, entity.Shifts); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, map[string]interface{}{
		"department": department,
		"role":       role,
		"shift":      shift,
	})
}

// ListActive 获取在职员工列表
func (s *EmployeeService) ListActive(ctx context.Context) ([]entity.Employee, error) {
	return s.repo.List(ctx, map[string]interface{}{"active": true})
}

// Update 局部更新员工
func (s *EmployeeService) Update(ctx context.Context, id string, req *UpdateEmployeeRequest) (*entity.Employee, error) {
	if err := validation.DocumentID(id); err != nil {
		return nil, err
	}
	if req.isEmpty() {
		return nil, apperr.EmptyPayload()
	}

	fields := map[string]interface{}{}
	if req.EmployeeID != nil {
		fields["employee_id"] = *req.EmployeeID
	}
	if req.FirstName != nil {
		if err := validation.MinLength("firstName", *req.FirstName, 2); err != nil {
			return nil, err
		}
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		if err := validation.MinLength("lastName", *req.LastName, 2); err != nil {
			return nil, err
		}
		fields["last_name"] = *req.LastName
	}
	if req.Email != nil {
		if err := validation.Email("email", *req.Email); err != nil {
			return nil, err
		}
		fields["email"] = *req.Email
	}
	if req.Department != nil {
		if err := validation.Enum("department", *req.Department, entity.Departments); err != nil {
			return nil, err
		}
		fields["department"] = *req.Department
	}
	if req.Role != nil {
		if err := validation.Enum("role", *req.Role, entity.EmployeeRoles); err != nil {
			return nil, err
		}
		fields["role"] = *req.Role
	}
	if req.HireDate != nil {
		fields["hire_date"] = *req.HireDate
	}
	if req.Shift != nil {
		if err := validation.Enum("shift", *req.Shift, entity.Shifts); err != nil {
			return nil, err
		}
		fields["shift"] = *req.Shift
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	if req.AssignedMachineID != nil {
		// 空串表示解除指派，不做引用校验
		if *req.AssignedMachineID != "" {
			if err := s.resolveMachine(ctx, *req.AssignedMachineID); err != nil {
				return nil, err
			}
		}
		fields["assigned_machine_id"] = *req.AssignedMachineID
	}
	fields["updated_at"] = time.Now()

	employee, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, translate(err, "employee")
	}
	return employee, nil
}

// Delete 删除员工，返回被删除的文档
func (s *EmployeeService) Delete(ctx context.Context, id string) (*entity.Employee, error) {
	if err := validation.DocumentID(id); err != nil {
		return nil, err
	}
	employee, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, translate(err, "employee")
	}
	return employee, nil
}
