package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/db"
	e "github.com/Alexistodj124/kiarasoftwareback/internal/kiara/errors"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductInput is a new product as received from the caller. Pointer
// fields distinguish "absent" from zero for the required ones.
type ProductInput struct {
	Descripcion string
	Marca       models.CatalogRef
	Categoria   models.CatalogRef
	Costo       *decimal.Decimal
	Precio      *decimal.Decimal
	Cantidad    *int
	Imagen      *string
}

// ServiceInput is a new service as received from the caller.
type ServiceInput struct {
	Descripcion string
	Categoria   models.CatalogRef
	Costo       *decimal.Decimal
	Precio      *decimal.Decimal
	Imagen      *string
}

// prices validates the cost and price pair shared by products and services.
func prices(costo, precio *decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if costo == nil {
		return decimal.Zero, decimal.Zero, e.Invalid("costo es requerido")
	}
	if precio == nil {
		return decimal.Zero, decimal.Zero, e.Invalid("precio es requerido")
	}
	c, err := money("costo", *costo)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	p, err := money("precio", *precio)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return c, p, nil
}

func quantity(n int) error {
	if n < 0 {
		return e.Invalid("cantidad no puede ser negativa")
	}
	return nil
}

type ProductService struct {
	repo   Repository
	logger *zap.Logger
}

func NewProductService(repo Repository, logger *zap.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger.Named("product_service")}
}

func (s *ProductService) List(ctx context.Context, f models.CatalogFilter) ([]models.Product, error) {
	var products []models.Product
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		products, err = repo.ListProducts(ctx, f)
		return err
	})
	return products, err
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p *models.Product
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		p, err = repo.GetProduct(ctx, id)
		return err
	})
	return p, err
}

// Create validates the input, resolves brand and category references and
// stores the product.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	p := &models.Product{
		Descripcion: strings.TrimSpace(in.Descripcion),
		Imagen:      optionalText(in.Imagen),
	}
	if p.Descripcion == "" {
		return nil, e.Invalid("descripcion es requerida")
	}
	var err error
	if p.Costo, p.Precio, err = prices(in.Costo, in.Precio); err != nil {
		return nil, err
	}
	if in.Cantidad != nil {
		if err := quantity(*in.Cantidad); err != nil {
			return nil, err
		}
		p.Cantidad = *in.Cantidad
	}

	err = s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		if p.MarcaID, err = resolveLabel(ctx, repo, models.LabelBrand, in.Marca); err != nil {
			return err
		}
		if p.CategoriaID, err = resolveLabel(ctx, repo, models.LabelProductCategory, in.Categoria); err != nil {
			return err
		}
		return repo.CreateProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("product created", zap.Uint("product_id", p.ID))
	return p, nil
}

// Update applies a sparse patch. See models.ProductUpdate for the
// reference and image conventions.
func (s *ProductService) Update(ctx context.Context, update models.ProductUpdate) (*models.Product, error) {
	var p *models.Product
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		if p, err = repo.GetProduct(ctx, update.ID); err != nil {
			return err
		}
		if update.Descripcion != nil {
			d := strings.TrimSpace(*update.Descripcion)
			if d == "" {
				return e.Invalid("descripcion es requerida")
			}
			p.Descripcion = d
		}
		if update.Costo != nil {
			if p.Costo, err = money("costo", *update.Costo); err != nil {
				return err
			}
		}
		if update.Precio != nil {
			if p.Precio, err = money("precio", *update.Precio); err != nil {
				return err
			}
		}
		if update.Cantidad != nil {
			if err := quantity(*update.Cantidad); err != nil {
				return err
			}
			p.Cantidad = *update.Cantidad
		}
		if update.Imagen != nil {
			p.Imagen = optionalText(update.Imagen)
		}
		if update.Marca != nil {
			if p.MarcaID, err = resolveLabel(ctx, repo, models.LabelBrand, *update.Marca); err != nil {
				return err
			}
			p.Marca = nil
		}
		if update.Categoria != nil {
			if p.CategoriaID, err = resolveLabel(ctx, repo, models.LabelProductCategory, *update.Categoria); err != nil {
				return err
			}
			p.Categoria = nil
		}
		if err := repo.SaveProduct(ctx, p); err != nil {
			return err
		}
		p, err = repo.GetProduct(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		return repo.DeleteProduct(ctx, id)
	})
	if err != nil && !errors.Is(err, e.ErrNotFound) && !errors.Is(err, e.ErrConflict) {
		s.logger.Error("failed to delete product", zap.Error(err), zap.Uint("product_id", id))
	}
	return err
}

// ServiceService manages the services catalog.
type ServiceService struct {
	repo   Repository
	logger *zap.Logger
}

func NewServiceService(repo Repository, logger *zap.Logger) *ServiceService {
	return &ServiceService{repo: repo, logger: logger.Named("service_service")}
}

func (s *ServiceService) List(ctx context.Context, f models.CatalogFilter) ([]models.Service, error) {
	var services []models.Service
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		services, err = repo.ListServices(ctx, f)
		return err
	})
	return services, err
}

func (s *ServiceService) Get(ctx context.Context, id uint) (*models.Service, error) {
	var svc *models.Service
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		svc, err = repo.GetService(ctx, id)
		return err
	})
	return svc, err
}

func (s *ServiceService) Create(ctx context.Context, in ServiceInput) (*models.Service, error) {
	svc := &models.Service{
		Descripcion: strings.TrimSpace(in.Descripcion),
		Imagen:      optionalText(in.Imagen),
	}
	if svc.Descripcion == "" {
		return nil, e.Invalid("descripcion es requerida")
	}
	var err error
	if svc.Costo, svc.Precio, err = prices(in.Costo, in.Precio); err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		if svc.CategoriaID, err = resolveLabel(ctx, repo, models.LabelServiceCategory, in.Categoria); err != nil {
			return err
		}
		return repo.CreateService(ctx, svc)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("service created", zap.Uint("service_id", svc.ID))
	return svc, nil
}

func (s *ServiceService) Update(ctx context.Context, update models.ServiceUpdate) (*models.Service, error) {
	var svc *models.Service
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		if svc, err = repo.GetService(ctx, update.ID); err != nil {
			return err
		}
		if update.Descripcion != nil {
			d := strings.TrimSpace(*update.Descripcion)
			if d == "" {
				return e.Invalid("descripcion es requerida")
			}
			svc.Descripcion = d
		}
		if update.Costo != nil {
			if svc.Costo, err = money("costo", *update.Costo); err != nil {
				return err
			}
		}
		if update.Precio != nil {
			if svc.Precio, err = money("precio", *update.Precio); err != nil {
				return err
			}
		}
		if update.Imagen != nil {
			svc.Imagen = optionalText(update.Imagen)
		}
		if update.Categoria != nil {
			if svc.CategoriaID, err = resolveLabel(ctx, repo, models.LabelServiceCategory, *update.Categoria); err != nil {
				return err
			}
			svc.Categoria = nil
		}
		if err := repo.SaveService(ctx, svc); err != nil {
			return err
		}
		svc, err = repo.GetService(ctx, svc.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *ServiceService) Delete(ctx context.Context, id uint) error {
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		return repo.DeleteService(ctx, id)
	})
	if err != nil && !errors.Is(err, e.ErrNotFound) && !errors.Is(err, e.ErrConflict) {
		s.logger.Error("failed to delete service", zap.Error(err), zap.Uint("service_id", id))
	}
	return err
}
