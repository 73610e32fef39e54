package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Label holds the columns shared by brands and both category kinds. The
// repository reads and writes it against the table selected by a LabelKind.
type Label struct {
	ID          uint      `gorm:"primaryKey"`
	Nombre      string    `gorm:"size:120;not null;uniqueIndex"`
	Descripcion *string   `gorm:"size:255"`
	Activo      bool      `gorm:"not null"`
	CreadoEn    time.Time `gorm:"autoCreateTime;not null"`
}

// Brand is a product brand (marca).
type Brand struct {
	Label
}

func (Brand) TableName() string { return "marcas_productos" }

// ProductCategory groups products.
type ProductCategory struct {
	Label
}

func (ProductCategory) TableName() string { return "categorias_productos" }

// ServiceCategory groups services.
type ServiceCategory struct {
	Label
}

func (ServiceCategory) TableName() string { return "categorias_servicios" }

// Product is a stocked catalog item.
type Product struct {
	ID          uint             `gorm:"primaryKey"`
	Descripcion string           `gorm:"size:255;not null"`
	MarcaID     *uint            `gorm:"index"`
	Marca       *Brand           `gorm:"foreignKey:MarcaID;constraint:OnDelete:RESTRICT"`
	CategoriaID *uint            `gorm:"index"`
	Categoria   *ProductCategory `gorm:"foreignKey:CategoriaID;constraint:OnDelete:RESTRICT"`
	Costo       decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	Precio      decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	Cantidad    int              `gorm:"not null;default:0;check:cantidad >= 0"`
	Imagen      *string          `gorm:"type:text"`
}

func (Product) TableName() string { return "productos" }

// Service is a catalog item that is not stocked.
type Service struct {
	ID          uint             `gorm:"primaryKey"`
	Descripcion string           `gorm:"size:255;not null"`
	CategoriaID *uint            `gorm:"index"`
	Categoria   *ServiceCategory `gorm:"foreignKey:CategoriaID;constraint:OnDelete:RESTRICT"`
	Costo       decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	Precio      decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	Imagen      *string          `gorm:"type:text"`
}

func (Service) TableName() string { return "servicios" }

// CatalogRef points at a brand or category either by id or by name.
// The zero value means "no association".
type CatalogRef struct {
	ID   uint
	Name string
}

// IsZero reports whether the reference names nothing.
func (r CatalogRef) IsZero() bool {
	return r.ID == 0 && r.Name == ""
}

// LabelUpdate patches a brand or category.
type LabelUpdate struct {
	ID          uint
	Nombre      *string
	Descripcion *string
	Activo      *bool
}

// ProductUpdate patches a product. A nil reference leaves the association
// untouched, a zero one clears it. An empty Imagen clears the image.
type ProductUpdate struct {
	ID          uint
	Descripcion *string
	Marca       *CatalogRef
	Categoria   *CatalogRef
	Costo       *decimal.Decimal
	Precio      *decimal.Decimal
	Cantidad    *int
	Imagen      *string
}

// ServiceUpdate patches a service with the same conventions as ProductUpdate.
type ServiceUpdate struct {
	ID          uint
	Descripcion *string
	Categoria   *CatalogRef
	Costo       *decimal.Decimal
	Precio      *decimal.Decimal
	Imagen      *string
}

// CatalogFilter narrows product and service listings.
type CatalogFilter struct {
	Query       string
	CategoriaID *uint
	MarcaID     *uint
	// Sort is one of "id", "descripcion", "precio".
	Sort string
	Desc bool
}

// LabelFilter narrows brand and category listings.
type LabelFilter struct {
	Activo *bool
}

// LabelKind selects one of the three label tables.
type LabelKind string

const (
	LabelBrand           LabelKind = "marcas_productos"
	LabelProductCategory LabelKind = "categorias_productos"
	LabelServiceCategory LabelKind = "categorias_servicios"
)

// Table returns the table backing the kind.
func (k LabelKind) Table() string { return string(k) }

// Noun is the singular name used in caller-facing messages.
func (k LabelKind) Noun() string {
	if k == LabelBrand {
		return "marca"
	}
	return "categoria"
}
