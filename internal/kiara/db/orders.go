package db

import (
	"context"
	"errors"

	e "github.com/Alexistodj124/kiarasoftwareback/internal/kiara/errors"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderPreloads loads everything an order is rendered with.
func orderPreloads(q *gorm.DB) *gorm.DB {
	return q.Preload("Cliente").
		Preload("Empleada").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Producto").
		Preload("Items.Servicio")
}

// ListOrders returns orders newest first.
func (r *Repository) ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, error) {
	q := r.db.WithContext(ctx)
	if f.Inicio != nil {
		q = q.Where("fecha >= ?", f.Inicio.UTC())
	}
	if f.Fin != nil {
		q = q.Where("fecha <= ?", f.Fin.UTC())
	}
	if f.ClienteID != nil {
		q = q.Where("cliente_id = ?", *f.ClienteID)
	}
	if f.EmpleadaID != nil {
		q = q.Where("empleada_id = ?", *f.EmpleadaID)
	}
	var orders []models.Order
	err := orderPreloads(q).Order("fecha DESC").Order("id DESC").Find(&orders).Error
	return orders, err
}

func (r *Repository) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := orderPreloads(r.db.WithContext(ctx)).First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.NotFound("orden no encontrada")
		}
		return nil, err
	}
	return &o, nil
}

// OrderCodeExists reports whether another order (id != exceptID) uses code.
func (r *Repository) OrderCodeExists(ctx context.Context, code string, exceptID uint) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("codigo = ? AND id <> ?", code, exceptID).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

// CreateOrder inserts the header only; items go through CreateOrderItems.
func (r *Repository) CreateOrder(ctx context.Context, o *models.Order) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error
	return translateWrite(err, "codigo de orden ya existe")
}

// SaveOrderHeader writes the header columns, leaving items untouched.
func (r *Repository) SaveOrderHeader(ctx context.Context, o *models.Order) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(o).Error
	return translateWrite(err, "codigo de orden ya existe")
}

func (r *Repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return translateWrite(r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error, "")
}

func (r *Repository) DeleteOrderItems(ctx context.Context, orderID uint) error {
	return r.db.WithContext(ctx).Where("orden_id = ?", orderID).Delete(&models.OrderItem{}).Error
}

// DeleteOrder removes the order and its items. Items are deleted explicitly
// so the outcome does not depend on the driver honouring ON DELETE CASCADE.
func (r *Repository) DeleteOrder(ctx context.Context, id uint) error {
	if err := r.DeleteOrderItems(ctx, id); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&models.Order{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.NotFound("orden no encontrada")
	}
	return nil
}
