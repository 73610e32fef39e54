package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/db"
	e "github.com/Alexistodj124/kiarasoftwareback/internal/kiara/errors"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"go.uber.org/zap"
)

// LabelService manages one of the brand or category tables.
type LabelService struct {
	repo   Repository
	kind   models.LabelKind
	logger *zap.Logger
}

func NewLabelService(repo Repository, kind models.LabelKind, logger *zap.Logger) *LabelService {
	return &LabelService{
		repo:   repo,
		kind:   kind,
		logger: logger.Named("label_service").With(zap.String("table", kind.Table())),
	}
}

func (s *LabelService) List(ctx context.Context, f models.LabelFilter) ([]models.Label, error) {
	var labels []models.Label
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		labels, err = repo.ListLabels(ctx, s.kind, f)
		return err
	})
	return labels, err
}

func (s *LabelService) Get(ctx context.Context, id uint) (*models.Label, error) {
	var label *models.Label
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		label, err = repo.GetLabel(ctx, s.kind, id)
		return err
	})
	return label, err
}

// Create inserts a new label. Activo defaults to true when nil.
func (s *LabelService) Create(ctx context.Context, nombre string, descripcion *string, activo *bool) (*models.Label, error) {
	label := &models.Label{
		Nombre:      strings.TrimSpace(nombre),
		Descripcion: optionalText(descripcion),
		Activo:      activo == nil || *activo,
	}
	if label.Nombre == "" {
		return nil, e.Invalid("nombre es requerido")
	}

	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		exists, err := repo.LabelExistsByName(ctx, s.kind, label.Nombre, 0)
		if err != nil {
			return err
		}
		if exists {
			return e.Conflict("%s ya existe", s.kind.Noun())
		}
		return repo.CreateLabel(ctx, s.kind, label)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("label created", zap.Uint("id", label.ID), zap.String("nombre", label.Nombre))
	return label, nil
}

func (s *LabelService) Update(ctx context.Context, update models.LabelUpdate) (*models.Label, error) {
	var label *models.Label
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		label, err = repo.GetLabel(ctx, s.kind, update.ID)
		if err != nil {
			return err
		}
		if update.Nombre != nil {
			nombre := strings.TrimSpace(*update.Nombre)
			if nombre == "" {
				return e.Invalid("nombre es requerido")
			}
			exists, err := repo.LabelExistsByName(ctx, s.kind, nombre, label.ID)
			if err != nil {
				return err
			}
			if exists {
				return e.Conflict("%s ya existe", s.kind.Noun())
			}
			label.Nombre = nombre
		}
		if update.Descripcion != nil {
			label.Descripcion = optionalText(update.Descripcion)
		}
		if update.Activo != nil {
			label.Activo = *update.Activo
		}
		return repo.SaveLabel(ctx, s.kind, label)
	})
	if err != nil {
		return nil, err
	}
	return label, nil
}

func (s *LabelService) Delete(ctx context.Context, id uint) error {
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		return repo.DeleteLabel(ctx, s.kind, id)
	})
	if err != nil {
		if !errors.Is(err, e.ErrNotFound) && !errors.Is(err, e.ErrConflict) {
			s.logger.Error("failed to delete label", zap.Error(err), zap.Uint("id", id))
		}
		return err
	}
	return nil
}

// resolveLabel turns a reference into a foreign key value. A zero reference
// yields nil, an id must exist, and a name is found or created.
func resolveLabel(ctx context.Context, repo *db.Repository, kind models.LabelKind, ref models.CatalogRef) (*uint, error) {
	switch {
	case ref.ID != 0:
		label, err := repo.GetLabel(ctx, kind, ref.ID)
		if err != nil {
			if errors.Is(err, e.ErrNotFound) {
				return nil, e.Invalid("%s %d no existe", kind.Noun(), ref.ID)
			}
			return nil, err
		}
		return &label.ID, nil
	case strings.TrimSpace(ref.Name) != "":
		label, err := repo.FindOrCreateLabel(ctx, kind, strings.TrimSpace(ref.Name))
		if err != nil {
			return nil, err
		}
		return &label.ID, nil
	default:
		return nil, nil
	}
}
