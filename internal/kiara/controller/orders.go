package controller

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/db"
	e "github.com/Alexistodj124/kiarasoftwareback/internal/kiara/errors"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/events"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"github.com/Alexistodj124/kiarasoftwareback/internal/pkg/utils"
	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxCodeLength = 20

// PartyInput identifies the client or employee of an order, either by id
// or by contact data used for lookup-or-create.
type PartyInput struct {
	ID       *uint
	Nombre   *string
	Telefono *string
}

// ItemInput is an order line as received from the caller.
type ItemInput struct {
	Tipo           string
	ProductoID     *uint
	ServicioID     *uint
	Cantidad       *int
	PrecioUnitario *decimal.Decimal
}

// LineItem is a validated order line. RefID points at a product or a
// service depending on Kind, so a line can never reference both.
type LineItem struct {
	Kind      models.ItemKind
	RefID     uint
	Quantity  int
	UnitPrice decimal.Decimal
}

// NewLineItem validates the raw input and builds the tagged value.
func NewLineItem(in ItemInput) (LineItem, error) {
	kind := models.ItemKind(strings.TrimSpace(in.Tipo))
	if !kind.Valid() {
		return LineItem{}, e.Invalid("tipo de item debe ser 'producto' o 'servicio'")
	}
	if in.PrecioUnitario == nil {
		return LineItem{}, e.Invalid("precio_unitario es requerido en cada item")
	}
	price, err := money("precio_unitario", *in.PrecioUnitario)
	if err != nil {
		return LineItem{}, err
	}
	item := LineItem{Kind: kind, Quantity: 1, UnitPrice: price}
	if in.Cantidad != nil {
		item.Quantity = *in.Cantidad
	}
	if item.Quantity <= 0 {
		return LineItem{}, e.Invalid("cantidad debe ser mayor que cero")
	}

	ref, other, otherKind := in.ProductoID, in.ServicioID, models.KindService
	if kind == models.KindService {
		ref, other, otherKind = in.ServicioID, in.ProductoID, models.KindProduct
	}
	if ref == nil || *ref == 0 {
		return LineItem{}, e.Invalid("%s_id es requerido cuando tipo='%s'", kind, kind)
	}
	if other != nil {
		return LineItem{}, e.Invalid("item de tipo %s no admite %s_id", kind, otherKind)
	}
	item.RefID = *ref
	return item, nil
}

// Row builds the persisted item for order orderID.
func (li LineItem) Row(orderID uint) models.OrderItem {
	row := models.OrderItem{
		OrdenID:        orderID,
		Tipo:           li.Kind,
		Cantidad:       li.Quantity,
		PrecioUnitario: li.UnitPrice,
	}
	id := li.RefID
	if li.Kind == models.KindProduct {
		row.ProductoID = &id
	} else {
		row.ServicioID = &id
	}
	return row
}

// OrderInput is a new order as received from the caller.
type OrderInput struct {
	Codigo   string
	Fecha    string
	Cliente  *PartyInput
	Empleada *PartyInput
	Items    []ItemInput
}

// OrderPatch is a sparse order update. A non-nil Items replaces the lines.
type OrderPatch struct {
	ID         uint
	Codigo     *string
	Fecha      *string
	ClienteID  *uint
	EmpleadaID *uint
	Items      *[]ItemInput
}

// OrderQuery holds the raw listing filters.
type OrderQuery struct {
	Inicio     string
	Fin        string
	ClienteID  *uint
	EmpleadaID *uint
}

// ParseTimestamp accepts ISO-8601 and the common layouts dateparse knows.
// Values without a zone are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

type OrderService struct {
	repo     Repository
	producer EventProducer
	logger   *zap.Logger
	now      func() time.Time
}

func NewOrderService(repo Repository, producer EventProducer, logger *zap.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("order_service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *OrderService) List(ctx context.Context, q OrderQuery) ([]models.Order, error) {
	f := models.OrderFilter{ClienteID: q.ClienteID, EmpleadaID: q.EmpleadaID}
	if strings.TrimSpace(q.Inicio) != "" {
		t, err := ParseTimestamp(q.Inicio)
		if err != nil {
			return nil, e.Invalid("inicio inválido")
		}
		f.Inicio = &t
	}
	if strings.TrimSpace(q.Fin) != "" {
		t, err := ParseTimestamp(q.Fin)
		if err != nil {
			return nil, e.Invalid("fin inválido")
		}
		f.Fin = &t
	}

	var orders []models.Order
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		orders, err = repo.ListOrders(ctx, f)
		return err
	})
	return orders, err
}

func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	var o *models.Order
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		o, err = repo.GetOrder(ctx, id)
		return err
	})
	return o, err
}

// Create resolves the client and employee, validates and stores the order
// with its items. Any failure rolls back everything, inline-created
// clients and employees included.
func (s *OrderService) Create(ctx context.Context, in OrderInput) (*models.Order, error) {
	if in.Cliente == nil {
		return nil, e.Invalid("cliente es requerido")
	}
	if in.Empleada == nil {
		return nil, e.Invalid("empleada es requerida")
	}

	var order *models.Order
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		cliente, err := s.resolveClient(ctx, repo, in.Cliente)
		if err != nil {
			return err
		}
		empleada, err := s.resolveEmployee(ctx, repo, in.Empleada)
		if err != nil {
			return err
		}

		codigo, err := s.validCode(ctx, repo, in.Codigo, 0)
		if err != nil {
			return err
		}
		fecha := s.now()
		if strings.TrimSpace(in.Fecha) != "" {
			if fecha, err = ParseTimestamp(in.Fecha); err != nil {
				return e.Invalid("fecha inválida")
			}
		}
		lines, err := lineItems(in.Items)
		if err != nil {
			return err
		}

		header := &models.Order{
			Codigo:     codigo,
			Fecha:      fecha,
			ClienteID:  cliente.ID,
			EmpleadaID: empleada.ID,
		}
		if err := repo.CreateOrder(ctx, header); err != nil {
			return err
		}
		if err := writeItems(ctx, repo, header.ID, lines); err != nil {
			return err
		}
		order, err = repo.GetOrder(ctx, header.ID)
		return err
	})
	if err != nil {
		s.logFailure("failed to create order", err)
		return nil, err
	}

	s.logger.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("codigo", order.Codigo),
		zap.Int("items", len(order.Items)),
	)
	s.producer.Produce(events.OrderCreated, order)
	return order, nil
}

// Update applies a sparse patch in one transaction.
func (s *OrderService) Update(ctx context.Context, patch OrderPatch) (*models.Order, error) {
	var order *models.Order
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		header, err := repo.GetOrder(ctx, patch.ID)
		if err != nil {
			return err
		}
		if patch.Codigo != nil {
			if header.Codigo, err = s.validCode(ctx, repo, *patch.Codigo, header.ID); err != nil {
				return err
			}
		}
		if patch.Fecha != nil {
			if strings.TrimSpace(*patch.Fecha) == "" {
				header.Fecha = s.now()
			} else if header.Fecha, err = ParseTimestamp(*patch.Fecha); err != nil {
				return e.Invalid("fecha inválida")
			}
		}
		if patch.ClienteID != nil {
			if _, err := repo.GetClient(ctx, *patch.ClienteID); err != nil {
				return asInvalid(err, "cliente_id no válido")
			}
			header.ClienteID = *patch.ClienteID
			header.Cliente = models.Client{}
		}
		if patch.EmpleadaID != nil {
			if _, err := repo.GetEmployee(ctx, *patch.EmpleadaID); err != nil {
				return asInvalid(err, "empleada_id no válido")
			}
			header.EmpleadaID = *patch.EmpleadaID
			header.Empleada = models.Employee{}
		}

		var lines []LineItem
		if patch.Items != nil {
			if lines, err = lineItems(*patch.Items); err != nil {
				return err
			}
		}

		if err := repo.SaveOrderHeader(ctx, header); err != nil {
			return err
		}
		if patch.Items != nil {
			if err := repo.DeleteOrderItems(ctx, header.ID); err != nil {
				return err
			}
			if err := writeItems(ctx, repo, header.ID, lines); err != nil {
				return err
			}
		}
		order, err = repo.GetOrder(ctx, header.ID)
		return err
	})
	if err != nil {
		s.logFailure("failed to update order", err)
		return nil, err
	}

	s.producer.Produce(events.OrderUpdated, order)
	return order, nil
}

// Delete removes the order and its items.
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	var order *models.Order
	err := s.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		var err error
		if order, err = repo.GetOrder(ctx, id); err != nil {
			return err
		}
		return repo.DeleteOrder(ctx, id)
	})
	if err != nil {
		s.logFailure("failed to delete order", err)
		return err
	}
	s.producer.Produce(events.OrderDeleted, order)
	return nil
}

func (s *OrderService) resolveClient(ctx context.Context, repo *db.Repository, in *PartyInput) (*models.Client, error) {
	if in.ID != nil {
		c, err := repo.GetClient(ctx, *in.ID)
		if err != nil {
			return nil, asInvalid(err, "cliente con ese id no existe")
		}
		return c, nil
	}

	nombre := strings.TrimSpace(utils.Deref(in.Nombre))
	telefono := strings.TrimSpace(utils.Deref(in.Telefono))
	if nombre == "" || telefono == "" {
		return nil, e.Invalid("cliente requiere nombre y telefono")
	}
	c, err := repo.FindClientByPhone(ctx, telefono)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, e.ErrNotFound) {
		return nil, err
	}
	c = &models.Client{Nombre: nombre, Telefono: telefono}
	if err := repo.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Debug("client created inline", zap.Uint("client_id", c.ID))
	return c, nil
}

func (s *OrderService) resolveEmployee(ctx context.Context, repo *db.Repository, in *PartyInput) (*models.Employee, error) {
	if in.ID != nil {
		emp, err := repo.GetEmployee(ctx, *in.ID)
		if err != nil {
			return nil, asInvalid(err, "empleada con ese id no existe")
		}
		return emp, nil
	}

	nombre := strings.TrimSpace(utils.Deref(in.Nombre))
	if nombre == "" {
		return nil, e.Invalid("empleada requiere al menos nombre")
	}
	telefono := optionalText(in.Telefono)
	emp, err := repo.FindEmployee(ctx, nombre, telefono)
	if err == nil {
		return emp, nil
	}
	if !errors.Is(err, e.ErrNotFound) {
		return nil, err
	}
	emp = &models.Employee{Nombre: nombre, Telefono: telefono, Activo: true}
	if err := repo.CreateEmployee(ctx, emp); err != nil {
		return nil, err
	}
	s.logger.Debug("employee created inline", zap.Uint("employee_id", emp.ID))
	return emp, nil
}

// validCode checks that code is present, short enough and not used by
// another order.
func (s *OrderService) validCode(ctx context.Context, repo *db.Repository, code string, exceptID uint) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", e.Invalid("codigo de orden es requerido")
	}
	if utf8.RuneCountInString(code) > maxCodeLength {
		return "", e.Invalid("codigo de orden no puede exceder %d caracteres", maxCodeLength)
	}
	exists, err := repo.OrderCodeExists(ctx, code, exceptID)
	if err != nil {
		return "", err
	}
	if exists {
		return "", e.Conflict("codigo de orden ya existe")
	}
	return code, nil
}

func (s *OrderService) logFailure(msg string, err error) {
	if errors.Is(err, e.ErrInvalidInput) || errors.Is(err, e.ErrNotFound) || errors.Is(err, e.ErrConflict) {
		return
	}
	s.logger.Error(msg, zap.Error(err))
}

func lineItems(inputs []ItemInput) ([]LineItem, error) {
	if len(inputs) == 0 {
		return nil, e.Invalid("debe incluir al menos un item en 'items'")
	}
	lines := make([]LineItem, 0, len(inputs))
	for _, in := range inputs {
		li, err := NewLineItem(in)
		if err != nil {
			return nil, err
		}
		lines = append(lines, li)
	}
	return lines, nil
}

// writeItems checks that every referenced product or service exists and
// inserts the rows.
func writeItems(ctx context.Context, repo *db.Repository, orderID uint, lines []LineItem) error {
	rows := make([]models.OrderItem, 0, len(lines))
	for _, li := range lines {
		var err error
		if li.Kind == models.KindProduct {
			_, err = repo.GetProduct(ctx, li.RefID)
		} else {
			_, err = repo.GetService(ctx, li.RefID)
		}
		if err != nil {
			return asInvalid(err, "%s %d no existe", li.Kind, li.RefID)
		}
		rows = append(rows, li.Row(orderID))
	}
	return repo.CreateOrderItems(ctx, rows)
}

// asInvalid turns a not-found lookup into a validation error.
func asInvalid(err error, format string, args ...any) error {
	if errors.Is(err, e.ErrNotFound) {
		return e.Invalid(format, args...)
	}
	return err
}
