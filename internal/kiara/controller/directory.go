package controller

import (
	"context"
	"strings"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/db"
	e "github.com/Alexistodj124/kiarasoftwareback/internal/kiara/errors"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"go.uber.org/zap"
)

type ClientService struct {
	repo   Repository
	logger *zap.Logger
}

func NewClientService(repo Repository, logger *zap.Logger) *ClientService {
	return &ClientService{repo: repo, logger: logger.Named("client_service")}
}

func (s *ClientService) List(ctx context.Context, f models.DirectoryFilter) ([]models.Client, error) {
	var clients []models.Client
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		clients, err = repo.ListClients(ctx, f)
		return err
	})
	return clients, err
}

func (s *ClientService) Get(ctx context.Context, id uint) (*models.Client, error) {
	var c *models.Client
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		c, err = repo.GetClient(ctx, id)
		return err
	})
	return c, err
}

func (s *ClientService) Create(ctx context.Context, nombre, telefono string) (*models.Client, error) {
	c := &models.Client{Nombre: strings.TrimSpace(nombre), Telefono: strings.TrimSpace(telefono)}
	if c.Nombre == "" {
		return nil, e.Invalid("nombre es requerido")
	}
	if c.Telefono == "" {
		return nil, e.Invalid("telefono es requerido")
	}
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		return repo.CreateClient(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("client created", zap.Uint("client_id", c.ID))
	return c, nil
}

func (s *ClientService) Update(ctx context.Context, update models.ClientUpdate) (*models.Client, error) {
	var c *models.Client
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		if c, err = repo.GetClient(ctx, update.ID); err != nil {
			return err
		}
		if update.Nombre != nil {
			if c.Nombre = strings.TrimSpace(*update.Nombre); c.Nombre == "" {
				return e.Invalid("nombre es requerido")
			}
		}
		if update.Telefono != nil {
			if c.Telefono = strings.TrimSpace(*update.Telefono); c.Telefono == "" {
				return e.Invalid("telefono es requerido")
			}
		}
		return repo.SaveClient(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ClientService) Delete(ctx context.Context, id uint) error {
	return s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		return repo.DeleteClient(ctx, id)
	})
}

type EmployeeService struct {
	repo   Repository
	logger *zap.Logger
}

func NewEmployeeService(repo Repository, logger *zap.Logger) *EmployeeService {
	return &EmployeeService{repo: repo, logger: logger.Named("employee_service")}
}

func (s *EmployeeService) List(ctx context.Context, f models.DirectoryFilter) ([]models.Employee, error) {
	var employees []models.Employee
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		employees, err = repo.ListEmployees(ctx, f)
		return err
	})
	return employees, err
}

func (s *EmployeeService) Get(ctx context.Context, id uint) (*models.Employee, error) {
	var emp *models.Employee
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		emp, err = repo.GetEmployee(ctx, id)
		return err
	})
	return emp, err
}

// Create stores a new employee. Activo defaults to true when nil.
func (s *EmployeeService) Create(ctx context.Context, nombre string, telefono *string, activo *bool) (*models.Employee, error) {
	emp := &models.Employee{
		Nombre:   strings.TrimSpace(nombre),
		Telefono: optionalText(telefono),
		Activo:   activo == nil || *activo,
	}
	if emp.Nombre == "" {
		return nil, e.Invalid("nombre es requerido")
	}
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		return repo.CreateEmployee(ctx, emp)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("employee created", zap.Uint("employee_id", emp.ID))
	return emp, nil
}

func (s *EmployeeService) Update(ctx context.Context, update models.EmployeeUpdate) (*models.Employee, error) {
	var emp *models.Employee
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		if emp, err = repo.GetEmployee(ctx, update.ID); err != nil {
			return err
		}
		if update.Nombre != nil {
			if emp.Nombre = strings.TrimSpace(*update.Nombre); emp.Nombre == "" {
				return e.Invalid("nombre es requerido")
			}
		}
		if update.Telefono != nil {
			emp.Telefono = optionalText(update.Telefono)
		}
		if update.Activo != nil {
			emp.Activo = *update.Activo
		}
		return repo.SaveEmployee(ctx, emp)
	})
	if err != nil {
		return nil, err
	}
	return emp, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id uint) error {
	return s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		return repo.DeleteEmployee(ctx, id)
	})
}
