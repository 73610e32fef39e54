package handlers

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/controller"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"github.com/Alexistodj124/kiarasoftwareback/internal/pkg/utils"
	"github.com/shopspring/decimal"
)

// fieldError carries a caller-facing message out of a custom decoder.
type fieldError struct {
	msg string
}

func (e *fieldError) Error() string { return e.msg }

// Optional records whether a field was present and whether it was null,
// which a plain pointer cannot tell apart.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Patch returns nil when absent, a pointer to the zero value when null and
// a pointer to the value otherwise.
func (o Optional[T]) Patch() *T {
	if !o.Set {
		return nil
	}
	if o.Null {
		var zero T
		return &zero
	}
	v := o.Value
	return &v
}

// refField decodes a brand or category reference: a number is an id, a
// string is a name, and null or "" clear the association.
type refField struct {
	Set bool
	Ref models.CatalogRef
}

func (r *refField) UnmarshalJSON(data []byte) error {
	r.Set = true
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		r.Ref.Name = strings.TrimSpace(name)
		return nil
	default:
		var id uint
		if err := json.Unmarshal(data, &id); err != nil {
			return &fieldError{"referencia debe ser un id numérico o un nombre"}
		}
		if id == 0 {
			return &fieldError{"id de referencia debe ser mayor que cero"}
		}
		r.Ref.ID = id
		return nil
	}
}

// pick prefers the named field and falls back to its numeric-only *_id
// alias.
func pick(field refField, alias refField, aliasName string) (refField, error) {
	if alias.Set && alias.Ref.Name != "" {
		return refField{}, &fieldError{aliasName + " debe ser numérico"}
	}
	if field.Set {
		return field, nil
	}
	return alias, nil
}

type labelRequest struct {
	Nombre      *string          `json:"nombre"`
	Descripcion Optional[string] `json:"descripcion"`
	Activo      *bool            `json:"activo"`
}

type productRequest struct {
	Descripcion *string          `json:"descripcion"`
	Marca       refField         `json:"marca"`
	MarcaID     refField         `json:"marca_id"`
	Categoria   refField         `json:"categoria"`
	CategoriaID refField         `json:"categoria_id"`
	Costo       *decimal.Decimal `json:"costo"`
	Precio      *decimal.Decimal `json:"precio"`
	Cantidad    *int             `json:"cantidad"`
	Imagen      Optional[string] `json:"imagen"`
}

func (r *productRequest) refs() (marca, categoria refField, err error) {
	if marca, err = pick(r.Marca, r.MarcaID, "marca_id"); err != nil {
		return
	}
	categoria, err = pick(r.Categoria, r.CategoriaID, "categoria_id")
	return
}

func (r *productRequest) toInput() (controller.ProductInput, error) {
	marca, categoria, err := r.refs()
	if err != nil {
		return controller.ProductInput{}, err
	}
	return controller.ProductInput{
		Descripcion: utils.Deref(r.Descripcion),
		Marca:       marca.Ref,
		Categoria:   categoria.Ref,
		Costo:       r.Costo,
		Precio:      r.Precio,
		Cantidad:    r.Cantidad,
		Imagen:      r.Imagen.Patch(),
	}, nil
}

func (r *productRequest) toUpdate(id uint) (models.ProductUpdate, error) {
	marca, categoria, err := r.refs()
	if err != nil {
		return models.ProductUpdate{}, err
	}
	update := models.ProductUpdate{
		ID:          id,
		Descripcion: r.Descripcion,
		Costo:       r.Costo,
		Precio:      r.Precio,
		Cantidad:    r.Cantidad,
		Imagen:      r.Imagen.Patch(),
	}
	if marca.Set {
		update.Marca = &marca.Ref
	}
	if categoria.Set {
		update.Categoria = &categoria.Ref
	}
	return update, nil
}

type serviceRequest struct {
	Descripcion *string          `json:"descripcion"`
	Categoria   refField         `json:"categoria"`
	CategoriaID refField         `json:"categoria_id"`
	Costo       *decimal.Decimal `json:"costo"`
	Precio      *decimal.Decimal `json:"precio"`
	Imagen      Optional[string] `json:"imagen"`
}

func (r *serviceRequest) toInput() (controller.ServiceInput, error) {
	categoria, err := pick(r.Categoria, r.CategoriaID, "categoria_id")
	if err != nil {
		return controller.ServiceInput{}, err
	}
	return controller.ServiceInput{
		Descripcion: utils.Deref(r.Descripcion),
		Categoria:   categoria.Ref,
		Costo:       r.Costo,
		Precio:      r.Precio,
		Imagen:      r.Imagen.Patch(),
	}, nil
}

func (r *serviceRequest) toUpdate(id uint) (models.ServiceUpdate, error) {
	categoria, err := pick(r.Categoria, r.CategoriaID, "categoria_id")
	if err != nil {
		return models.ServiceUpdate{}, err
	}
	update := models.ServiceUpdate{
		ID:          id,
		Descripcion: r.Descripcion,
		Costo:       r.Costo,
		Precio:      r.Precio,
		Imagen:      r.Imagen.Patch(),
	}
	if categoria.Set {
		update.Categoria = &categoria.Ref
	}
	return update, nil
}

type clientRequest struct {
	Nombre   *string `json:"nombre"`
	Telefono *string `json:"telefono"`
}

type employeeRequest struct {
	Nombre   *string          `json:"nombre"`
	Telefono Optional[string] `json:"telefono"`
	Activo   *bool            `json:"activo"`
}

type partyRequest struct {
	ID       *uint   `json:"id"`
	Nombre   *string `json:"nombre"`
	Telefono *string `json:"telefono"`
}

func (p *partyRequest) toInput() *controller.PartyInput {
	if p == nil {
		return nil
	}
	return &controller.PartyInput{ID: p.ID, Nombre: p.Nombre, Telefono: p.Telefono}
}

type itemRequest struct {
	Tipo           string           `json:"tipo"`
	ProductoID     *uint            `json:"producto_id"`
	ServicioID     *uint            `json:"servicio_id"`
	Cantidad       *int             `json:"cantidad"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
}

func itemInputs(items []itemRequest) []controller.ItemInput {
	out := make([]controller.ItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, controller.ItemInput{
			Tipo:           it.Tipo,
			ProductoID:     it.ProductoID,
			ServicioID:     it.ServicioID,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
		})
	}
	return out
}

type orderRequest struct {
	Codigo   string        `json:"codigo"`
	Fecha    *string       `json:"fecha"`
	Cliente  *partyRequest `json:"cliente"`
	Empleada *partyRequest `json:"empleada"`
	Items    []itemRequest `json:"items"`
}

func (r *orderRequest) toInput() controller.OrderInput {
	return controller.OrderInput{
		Codigo:   r.Codigo,
		Fecha:    utils.Deref(r.Fecha),
		Cliente:  r.Cliente.toInput(),
		Empleada: r.Empleada.toInput(),
		Items:    itemInputs(r.Items),
	}
}

type orderPatchRequest struct {
	Codigo     *string        `json:"codigo"`
	Fecha      *string        `json:"fecha"`
	ClienteID  *uint          `json:"cliente_id"`
	EmpleadaID *uint          `json:"empleada_id"`
	Items      *[]itemRequest `json:"items"`
}

func (r *orderPatchRequest) toPatch(id uint) controller.OrderPatch {
	patch := controller.OrderPatch{
		ID:         id,
		Codigo:     r.Codigo,
		Fecha:      r.Fecha,
		ClienteID:  r.ClienteID,
		EmpleadaID: r.EmpleadaID,
	}
	if r.Items != nil {
		items := itemInputs(*r.Items)
		patch.Items = &items
	}
	return patch
}

type userRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"is_admin"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
