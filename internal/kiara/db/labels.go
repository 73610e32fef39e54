package db

import (
	"context"
	"errors"

	e "github.com/Alexistodj124/kiarasoftwareback/internal/kiara/errors"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// labelDependants lists the table and column referencing each label kind.
var labelDependants = map[models.LabelKind]struct{ table, column, noun string }{
	models.LabelBrand:           {"productos", "marca_id", "productos"},
	models.LabelProductCategory: {"productos", "categoria_id", "productos"},
	models.LabelServiceCategory: {"servicios", "categoria_id", "servicios"},
}

func (r *Repository) ListLabels(ctx context.Context, kind models.LabelKind, f models.LabelFilter) ([]models.Label, error) {
	q := r.db.WithContext(ctx).Table(kind.Table())
	if f.Activo != nil {
		q = q.Where("activo = ?", *f.Activo)
	}
	var labels []models.Label
	err := q.Order("nombre").Find(&labels).Error
	return labels, err
}

func (r *Repository) GetLabel(ctx context.Context, kind models.LabelKind, id uint) (*models.Label, error) {
	var label models.Label
	err := r.db.WithContext(ctx).Table(kind.Table()).First(&label, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.NotFound("%s no encontrada", kind.Noun())
		}
		return nil, err
	}
	return &label, nil
}

// GetLabelByName returns ErrNotFound when no row has exactly that name.
func (r *Repository) GetLabelByName(ctx context.Context, kind models.LabelKind, name string) (*models.Label, error) {
	var label models.Label
	err := r.db.WithContext(ctx).Table(kind.Table()).Where("nombre = ?", name).First(&label).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.NotFound("%s no encontrada", kind.Noun())
		}
		return nil, err
	}
	return &label, nil
}

func (r *Repository) CreateLabel(ctx context.Context, kind models.LabelKind, label *models.Label) error {
	err := r.db.WithContext(ctx).Table(kind.Table()).Create(label).Error
	return translateWrite(err, kind.Noun()+" ya existe")
}

func (r *Repository) SaveLabel(ctx context.Context, kind models.LabelKind, label *models.Label) error {
	err := r.db.WithContext(ctx).Table(kind.Table()).Save(label).Error
	return translateWrite(err, kind.Noun()+" ya existe")
}

// LabelExistsByName reports whether another row (id != exceptID) uses name.
func (r *Repository) LabelExistsByName(ctx context.Context, kind models.LabelKind, name string, exceptID uint) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Table(kind.Table()).
		Where("nombre = ? AND id <> ?", name, exceptID).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

// FindOrCreateLabel inserts the name unless it exists and returns the row.
// The unique index on nombre makes concurrent callers converge on one row.
func (r *Repository) FindOrCreateLabel(ctx context.Context, kind models.LabelKind, name string) (*models.Label, error) {
	label := models.Label{Nombre: name, Activo: true}
	err := r.db.WithContext(ctx).Table(kind.Table()).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "nombre"}}, DoNothing: true}).
		Create(&label).Error
	if err != nil {
		return nil, err
	}
	return r.GetLabelByName(ctx, kind, name)
}

// DeleteLabel refuses to delete a label still referenced by the catalog.
func (r *Repository) DeleteLabel(ctx context.Context, kind models.LabelKind, id uint) error {
	dep := labelDependants[kind]
	n, err := r.countRefs(ctx, dep.table, dep.column, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return e.Conflict("%s en uso por %d %s", kind.Noun(), n, dep.noun)
	}
	result := r.db.WithContext(ctx).Table(kind.Table()).Delete(&models.Label{}, id)
	if result.Error != nil {
		return translateWrite(result.Error, "")
	}
	if result.RowsAffected == 0 {
		return e.NotFound("%s no encontrada", kind.Noun())
	}
	return nil
}
