package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/dto"
	"github.com/MILO-debug/POS/internal/infra"
	"github.com/MILO-debug/POS/internal/model"
	"github.com/MILO-debug/POS/internal/repository"
)

// ── Categories ───────────────────────────────────────────────────────────────

type CategoryService interface {
	Create(ctx context.Context, req dto.CategoryRequest) (*model.Category, string, error)
	Update(ctx context.Context, id string, req dto.CategoryRequest) (*model.Category, string, error)
	List(ctx context.Context) ([]model.Category, error)
	Delete(ctx context.Context, id string) (string, error)
}

type categoryService struct {
	categories repository.CategoryRepository
	gw         Writer
}

func NewCategoryService(categories repository.CategoryRepository, gw Writer) CategoryService {
	return &categoryService{categories: categories, gw: gw}
}

func (s *categoryService) Create(ctx context.Context, req dto.CategoryRequest) (*model.Category, string, error) {
	exists, err := s.categories.ExistsName(ctx, req.Name)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", fmt.Errorf("%w: category %q already exists", apierror.ErrInvariant, req.Name)
	}
	c := &model.Category{Name: req.Name, Color: req.Color}
	outcome, err := s.gw.Write(ctx, model.WriteAdd, infra.ColCategories, c, "")
	if err != nil {
		return nil, "", err
	}
	c.ID = outcome.DocID
	return c, outcome.Disposition, nil
}

func (s *categoryService) Update(ctx context.Context, id string, req dto.CategoryRequest) (*model.Category, string, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if c.Name != req.Name {
		exists, err := s.categories.ExistsName(ctx, req.Name)
		if err != nil {
			return nil, "", err
		}
		if exists {
			return nil, "", fmt.Errorf("%w: category %q already exists", apierror.ErrInvariant, req.Name)
		}
	}
	c.Name = req.Name
	c.Color = req.Color
	outcome, err := s.gw.Write(ctx, model.WriteUpdate, infra.ColCategories, c, c.ID)
	if err != nil {
		return nil, "", err
	}
	return c, outcome.Disposition, nil
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.categories.List(ctx)
}

func (s *categoryService) Delete(ctx context.Context, id string) (string, error) {
	outcome, err := s.gw.Write(ctx, model.WriteDelete, infra.ColCategories, nil, id)
	if err != nil {
		return "", err
	}
	return outcome.Disposition, nil
}

// ── Employees ────────────────────────────────────────────────────────────────

type EmployeeService interface {
	Create(ctx context.Context, req dto.EmployeeRequest) (*model.Employee, string, error)
	Update(ctx context.Context, id string, req dto.EmployeeRequest) (*model.Employee, string, error)
	List(ctx context.Context) ([]model.Employee, error)
	Delete(ctx context.Context, id string) (string, error)
}

type employeeService struct {
	employees repository.EmployeeRepository
	gw        Writer
}

func NewEmployeeService(employees repository.EmployeeRepository, gw Writer) EmployeeService {
	return &employeeService{employees: employees, gw: gw}
}

func (s *employeeService) Create(ctx context.Context, req dto.EmployeeRequest) (*model.Employee, string, error) {
	exists, err := s.employees.ExistsName(ctx, req.Name)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", fmt.Errorf("%w: employee %q already exists", apierror.ErrInvariant, req.Name)
	}
	e := &model.Employee{Name: req.Name, Username: req.Username}
	outcome, err := s.gw.Write(ctx, model.WriteAdd, infra.ColEmployees, e, "")
	if err != nil {
		return nil, "", err
	}
	e.ID = outcome.DocID
	log.Info().Str("employee_id", e.ID).Str("name", e.Name).Msg("employee registered")
	return e, outcome.Disposition, nil
}

func (s *employeeService) Update(ctx context.Context, id string, req dto.EmployeeRequest) (*model.Employee, string, error) {
	e, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	// Shift documents reference the cashier by name, so a rename must not
	// collide with another employee.
	if e.Name != req.Name {
		exists, err := s.employees.ExistsName(ctx, req.Name)
		if err != nil {
			return nil, "", err
		}
		if exists {
			return nil, "", fmt.Errorf("%w: employee %q already exists", apierror.ErrInvariant, req.Name)
		}
	}
	e.Name = req.Name
	e.Username = req.Username
	outcome, err := s.gw.Write(ctx, model.WriteUpdate, infra.ColEmployees, e, e.ID)
	if err != nil {
		return nil, "", err
	}
	return e, outcome.Disposition, nil
}

func (s *employeeService) List(ctx context.Context) ([]model.Employee, error) {
	return s.employees.List(ctx)
}

func (s *employeeService) Delete(ctx context.Context, id string) (string, error) {
	outcome, err := s.gw.Write(ctx, model.WriteDelete, infra.ColEmployees, nil, id)
	if err != nil {
		return "", err
	}
	return outcome.Disposition, nil
}
