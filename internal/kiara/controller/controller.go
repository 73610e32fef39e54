// Package controller implements the business logic (service layer) of the
// inventory and order API. Every operation runs inside exactly one
// repository transaction; order services also hand lifecycle events to an
// EventProducer once the transaction has committed.
package controller

import (
	"context"
	"strings"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/db"
	e "github.com/Alexistodj124/kiarasoftwareback/internal/kiara/errors"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/events"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type EventProducer interface {
	Produce(eventType events.EventType, order *models.Order)
}

// Repository is the transactional entry point to storage. The callback
// receives a repository bound to the transaction and must use only that one.
type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo *db.Repository) error) error
}

// Services bundles every service so the transport layer takes one value.
type Services struct {
	Brands            *LabelService
	ProductCategories *LabelService
	ServiceCategories *LabelService
	Products          *ProductService
	ServiceCatalog    *ServiceService
	Clients           *ClientService
	Employees         *EmployeeService
	Orders            *OrderService
	Users             *UserService
}

// money rounds to cents and rejects negatives.
func money(field string, d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Zero, e.Invalid("%s no puede ser negativo", field)
	}
	return d.Round(2), nil
}

// optionalText trims s and maps an empty result to nil.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// NewServices wires every service to the same repository and producer.
func NewServices(repo Repository, producer EventProducer, logger *zap.Logger) *Services {
	return &Services{
		Brands:            NewLabelService(repo, models.LabelBrand, logger),
		ProductCategories: NewLabelService(repo, models.LabelProductCategory, logger),
		ServiceCategories: NewLabelService(repo, models.LabelServiceCategory, logger),
		Products:          NewProductService(repo, logger),
		ServiceCatalog:    NewServiceService(repo, logger),
		Clients:           NewClientService(repo, logger),
		Employees:         NewEmployeeService(repo, logger),
		Orders:            NewOrderService(repo, producer, logger),
		Users:             NewUserService(repo, logger),
	}
}
