package db

import (
	"context"
	"errors"

	e "github.com/Alexistodj124/kiarasoftwareback/internal/kiara/errors"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"gorm.io/gorm"
)

func (r *Repository) ListClients(ctx context.Context, f models.DirectoryFilter) ([]models.Client, error) {
	q := r.db.WithContext(ctx)
	if f.Query != "" {
		q = r.containsFold(q, "nombre", f.Query)
	}
	var clients []models.Client
	err := q.Order("nombre").Order("id").Find(&clients).Error
	return clients, err
}

func (r *Repository) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	if err := r.first(ctx, &c, id, "cliente"); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindClientByPhone matches the phone exactly and returns ErrNotFound on a miss.
func (r *Repository) FindClientByPhone(ctx context.Context, phone string) (*models.Client, error) {
	var c models.Client
	err := r.db.WithContext(ctx).Where("telefono = ?", phone).Order("id").First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.NotFound("cliente no encontrado")
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repository) CreateClient(ctx context.Context, c *models.Client) error {
	return translateWrite(r.db.WithContext(ctx).Create(c).Error, "cliente ya existe")
}

func (r *Repository) SaveClient(ctx context.Context, c *models.Client) error {
	return translateWrite(r.db.WithContext(ctx).Save(c).Error, "cliente ya existe")
}

// DeleteClient refuses to delete a client that still has orders.
func (r *Repository) DeleteClient(ctx context.Context, id uint) error {
	n, err := r.countRefs(ctx, "ordenes", "cliente_id", id)
	if err != nil {
		return err
	}
	if n > 0 {
		return e.Conflict("cliente en uso por %d ordenes", n)
	}
	result := r.db.WithContext(ctx).Delete(&models.Client{}, id)
	if result.Error != nil {
		return translateWrite(result.Error, "")
	}
	if result.RowsAffected == 0 {
		return e.NotFound("cliente no encontrado")
	}
	return nil
}

func (r *Repository) ListEmployees(ctx context.Context, f models.DirectoryFilter) ([]models.Employee, error) {
	q := r.db.WithContext(ctx)
	if f.Query != "" {
		q = r.containsFold(q, "nombre", f.Query)
	}
	if f.Activo != nil {
		q = q.Where("activo = ?", *f.Activo)
	}
	var employees []models.Employee
	err := q.Order("nombre").Order("id").Find(&employees).Error
	return employees, err
}

func (r *Repository) GetEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	var emp models.Employee
	if err := r.first(ctx, &emp, id, "empleada"); err != nil {
		return nil, err
	}
	return &emp, nil
}

// FindEmployee matches the name exactly and, when phone is given, the phone
// too. It returns ErrNotFound on a miss.
func (r *Repository) FindEmployee(ctx context.Context, name string, phone *string) (*models.Employee, error) {
	q := r.db.WithContext(ctx).Where("nombre = ?", name)
	if phone != nil {
		q = q.Where("telefono = ?", *phone)
	}
	var emp models.Employee
	if err := q.Order("id").First(&emp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.NotFound("empleada no encontrada")
		}
		return nil, err
	}
	return &emp, nil
}

func (r *Repository) CreateEmployee(ctx context.Context, emp *models.Employee) error {
	return translateWrite(r.db.WithContext(ctx).Create(emp).Error, "empleada ya existe")
}

func (r *Repository) SaveEmployee(ctx context.Context, emp *models.Employee) error {
	return translateWrite(r.db.WithContext(ctx).Save(emp).Error, "empleada ya existe")
}

// DeleteEmployee refuses to delete an employee that still has orders.
func (r *Repository) DeleteEmployee(ctx context.Context, id uint) error {
	n, err := r.countRefs(ctx, "ordenes", "empleada_id", id)
	if err != nil {
		return err
	}
	if n > 0 {
		return e.Conflict("empleada en uso por %d ordenes", n)
	}
	result := r.db.WithContext(ctx).Delete(&models.Employee{}, id)
	if result.Error != nil {
		return translateWrite(result.Error, "")
	}
	if result.RowsAffected == 0 {
		return e.NotFound("empleada no encontrada")
	}
	return nil
}
