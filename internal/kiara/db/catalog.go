package db

import (
	"context"

	e "github.com/Alexistodj124/kiarasoftwareback/internal/kiara/errors"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// catalogSortColumns whitelists sortable columns to avoid SQL injection.
var catalogSortColumns = map[string]string{
	"":            "id",
	"id":          "id",
	"descripcion": "descripcion",
	"precio":      "precio",
}

func (r *Repository) catalogQuery(ctx context.Context, f models.CatalogFilter) (*gorm.DB, error) {
	col, ok := catalogSortColumns[f.Sort]
	if !ok {
		return nil, e.Invalid("sort debe ser id, descripcion o precio")
	}
	q := r.db.WithContext(ctx)
	if f.Query != "" {
		q = r.containsFold(q, "descripcion", f.Query)
	}
	if f.CategoriaID != nil {
		q = q.Where("categoria_id = ?", *f.CategoriaID)
	}
	return q.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: f.Desc}), nil
}

func (r *Repository) ListProducts(ctx context.Context, f models.CatalogFilter) ([]models.Product, error) {
	q, err := r.catalogQuery(ctx, f)
	if err != nil {
		return nil, err
	}
	if f.MarcaID != nil {
		q = q.Where("marca_id = ?", *f.MarcaID)
	}
	var products []models.Product
	err = q.Preload("Marca").Preload("Categoria").Find(&products).Error
	return products, err
}

func (r *Repository) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.first(ctx, &p, id, "producto", "Marca", "Categoria"); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) CreateProduct(ctx context.Context, p *models.Product) error {
	return translateWrite(r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error, "producto ya existe")
}

// SaveProduct writes every column of p, including cleared references.
func (r *Repository) SaveProduct(ctx context.Context, p *models.Product) error {
	return translateWrite(r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error, "producto ya existe")
}

// DeleteProduct refuses to delete a product that appears in any order.
func (r *Repository) DeleteProduct(ctx context.Context, id uint) error {
	n, err := r.countRefs(ctx, "orden_items", "producto_id", id)
	if err != nil {
		return err
	}
	if n > 0 {
		return e.Conflict("producto en uso por %d items de orden", n)
	}
	result := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return translateWrite(result.Error, "")
	}
	if result.RowsAffected == 0 {
		return e.NotFound("producto no encontrado")
	}
	return nil
}

func (r *Repository) ListServices(ctx context.Context, f models.CatalogFilter) ([]models.Service, error) {
	q, err := r.catalogQuery(ctx, f)
	if err != nil {
		return nil, err
	}
	var services []models.Service
	err = q.Preload("Categoria").Find(&services).Error
	return services, err
}

func (r *Repository) GetService(ctx context.Context, id uint) (*models.Service, error) {
	var s models.Service
	if err := r.first(ctx, &s, id, "servicio", "Categoria"); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) CreateService(ctx context.Context, s *models.Service) error {
	return translateWrite(r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error, "servicio ya existe")
}

func (r *Repository) SaveService(ctx context.Context, s *models.Service) error {
	return translateWrite(r.db.WithContext(ctx).Omit(clause.Associations).Save(s).Error, "servicio ya existe")
}

// DeleteService refuses to delete a service that appears in any order.
func (r *Repository) DeleteService(ctx context.Context, id uint) error {
	n, err := r.countRefs(ctx, "orden_items", "servicio_id", id)
	if err != nil {
		return err
	}
	if n > 0 {
		return e.Conflict("servicio en uso por %d items de orden", n)
	}
	result := r.db.WithContext(ctx).Delete(&models.Service{}, id)
	if result.Error != nil {
		return translateWrite(result.Error, "")
	}
	if result.RowsAffected == 0 {
		return e.NotFound("servicio no encontrado")
	}
	return nil
}
