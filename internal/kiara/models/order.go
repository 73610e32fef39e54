package models

import (
	"time"

	e "github.com/Alexistodj124/kiarasoftwareback/internal/kiara/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemKind discriminates order items.
type ItemKind string

const (
	KindProduct ItemKind = "producto"
	KindService ItemKind = "servicio"
)

// Valid reports whether k is a known item kind.
func (k ItemKind) Valid() bool {
	return k == KindProduct || k == KindService
}

// Order is a sales transaction header.
type Order struct {
	ID         uint        `gorm:"primaryKey"`
	Codigo     string      `gorm:"size:20;not null;uniqueIndex"`
	Fecha      time.Time   `gorm:"not null;index"`
	ClienteID  uint        `gorm:"not null;index"`
	Cliente    Client      `gorm:"foreignKey:ClienteID;constraint:OnDelete:RESTRICT"`
	EmpleadaID uint        `gorm:"not null;index"`
	Empleada   Employee    `gorm:"foreignKey:EmpleadaID;constraint:OnDelete:RESTRICT"`
	Items      []OrderItem `gorm:"foreignKey:OrdenID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "ordenes" }

// Total sums the item subtotals.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].Subtotal())
	}
	return total
}

// OrderItem is one line of an order. Exactly one of ProductoID and
// ServicioID is set, matching Tipo; the check constraint backs Validate.
type OrderItem struct {
	ID             uint            `gorm:"primaryKey"`
	OrdenID        uint            `gorm:"not null;index"`
	Tipo           ItemKind        `gorm:"type:varchar(10);not null;check:chk_orden_items_ref,(tipo = 'producto' AND producto_id IS NOT NULL AND servicio_id IS NULL) OR (tipo = 'servicio' AND servicio_id IS NOT NULL AND producto_id IS NULL)"`
	ProductoID     *uint           `gorm:"index"`
	Producto       *Product        `gorm:"foreignKey:ProductoID;constraint:OnDelete:RESTRICT"`
	ServicioID     *uint           `gorm:"index"`
	Servicio       *Service        `gorm:"foreignKey:ServicioID;constraint:OnDelete:RESTRICT"`
	Cantidad       int             `gorm:"not null;default:1;check:cantidad > 0"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (OrderItem) TableName() string { return "orden_items" }

// Subtotal is quantity times the unit price snapshot.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.PrecioUnitario.Mul(decimal.NewFromInt(int64(i.Cantidad)))
}

// Validate checks the product-or-service exclusivity and the quantity.
func (i *OrderItem) Validate() error {
	switch i.Tipo {
	case KindProduct:
		if i.ProductoID == nil || i.ServicioID != nil {
			return e.Invalid("item de tipo producto requiere solo producto_id")
		}
	case KindService:
		if i.ServicioID == nil || i.ProductoID != nil {
			return e.Invalid("item de tipo servicio requiere solo servicio_id")
		}
	default:
		return e.Invalid("tipo de item debe ser 'producto' o 'servicio'")
	}
	if i.Cantidad <= 0 {
		return e.Invalid("cantidad debe ser mayor que cero")
	}
	if i.PrecioUnitario.IsNegative() {
		return e.Invalid("precio_unitario no puede ser negativo")
	}
	return nil
}

// BeforeSave rejects inconsistent rows before they reach the database.
func (i *OrderItem) BeforeSave(*gorm.DB) error {
	return i.Validate()
}

// OrderFilter narrows order listings. Bounds are inclusive.
type OrderFilter struct {
	Inicio     *time.Time
	Fin        *time.Time
	ClienteID  *uint
	EmpleadaID *uint
}
