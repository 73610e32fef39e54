package handlers

import (
	"encoding/json"
	"time"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"github.com/shopspring/decimal"
)

// money renders an amount as a JSON number with two fraction digits.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

type labelResponse struct {
	ID          uint    `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion *string `json:"descripcion"`
	Activo      bool    `json:"activo"`
	CreadoEn    string  `json:"creado_en"`
}

func toLabel(l *models.Label) labelResponse {
	return labelResponse{
		ID:          l.ID,
		Nombre:      l.Nombre,
		Descripcion: l.Descripcion,
		Activo:      l.Activo,
		CreadoEn:    timestamp(l.CreadoEn),
	}
}

type productResponse struct {
	ID          uint        `json:"id"`
	Descripcion string      `json:"descripcion"`
	Marca       *string     `json:"marca"`
	MarcaID     *uint       `json:"marca_id"`
	Categoria   *string     `json:"categoria"`
	CategoriaID *uint       `json:"categoria_id"`
	Costo       json.Number `json:"costo"`
	Precio      json.Number `json:"precio"`
	Cantidad    int         `json:"cantidad"`
	Imagen      *string     `json:"imagen"`
}

func toProduct(p *models.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Descripcion: p.Descripcion,
		MarcaID:     p.MarcaID,
		CategoriaID: p.CategoriaID,
		Costo:       money(p.Costo),
		Precio:      money(p.Precio),
		Cantidad:    p.Cantidad,
		Imagen:      p.Imagen,
	}
	if p.Marca != nil {
		resp.Marca = &p.Marca.Nombre
	}
	if p.Categoria != nil {
		resp.Categoria = &p.Categoria.Nombre
	}
	return resp
}

type serviceResponse struct {
	ID          uint        `json:"id"`
	Descripcion string      `json:"descripcion"`
	Categoria   *string     `json:"categoria"`
	CategoriaID *uint       `json:"categoria_id"`
	Costo       json.Number `json:"costo"`
	Precio      json.Number `json:"precio"`
	Imagen      *string     `json:"imagen"`
}

func toService(s *models.Service) serviceResponse {
	resp := serviceResponse{
		ID:          s.ID,
		Descripcion: s.Descripcion,
		CategoriaID: s.CategoriaID,
		Costo:       money(s.Costo),
		Precio:      money(s.Precio),
		Imagen:      s.Imagen,
	}
	if s.Categoria != nil {
		resp.Categoria = &s.Categoria.Nombre
	}
	return resp
}

type clientResponse struct {
	ID       uint   `json:"id"`
	Nombre   string `json:"nombre"`
	Telefono string `json:"telefono"`
}

func toClient(c *models.Client) clientResponse {
	return clientResponse{ID: c.ID, Nombre: c.Nombre, Telefono: c.Telefono}
}

type employeeResponse struct {
	ID       uint    `json:"id"`
	Nombre   string  `json:"nombre"`
	Telefono *string `json:"telefono"`
	Activo   bool    `json:"activo"`
	CreadoEn string  `json:"creado_en"`
}

func toEmployee(emp *models.Employee) employeeResponse {
	return employeeResponse{
		ID:       emp.ID,
		Nombre:   emp.Nombre,
		Telefono: emp.Telefono,
		Activo:   emp.Activo,
		CreadoEn: timestamp(emp.CreadoEn),
	}
}

type orderPartyResponse struct {
	ID       uint    `json:"id"`
	Nombre   string  `json:"nombre"`
	Telefono *string `json:"telefono"`
}

type itemProductResponse struct {
	ID          uint        `json:"id"`
	Descripcion string      `json:"descripcion"`
	Precio      json.Number `json:"precio"`
	CategoriaID *uint       `json:"categoria_id"`
	MarcaID     *uint       `json:"marca_id"`
}

type itemServiceResponse struct {
	ID          uint        `json:"id"`
	Descripcion string      `json:"descripcion"`
	Precio      json.Number `json:"precio"`
	CategoriaID *uint       `json:"categoria_id"`
}

type orderItemResponse struct {
	ID             uint                 `json:"id"`
	Tipo           models.ItemKind      `json:"tipo"`
	ProductoID     *uint                `json:"producto_id"`
	ServicioID     *uint                `json:"servicio_id"`
	Cantidad       int                  `json:"cantidad"`
	PrecioUnitario json.Number          `json:"precio_unitario"`
	Subtotal       json.Number          `json:"subtotal"`
	Producto       *itemProductResponse `json:"producto"`
	Servicio       *itemServiceResponse `json:"servicio"`
}

type orderResponse struct {
	ID       uint                `json:"id"`
	Codigo   string              `json:"codigo"`
	Fecha    string              `json:"fecha"`
	Total    json.Number         `json:"total"`
	Cliente  orderPartyResponse  `json:"cliente"`
	Empleada orderPartyResponse  `json:"empleada"`
	Items    []orderItemResponse `json:"items"`
}

func toOrder(o *models.Order) orderResponse {
	telefono := o.Cliente.Telefono
	resp := orderResponse{
		ID:       o.ID,
		Codigo:   o.Codigo,
		Fecha:    timestamp(o.Fecha),
		Total:    money(o.Total()),
		Cliente:  orderPartyResponse{ID: o.Cliente.ID, Nombre: o.Cliente.Nombre, Telefono: &telefono},
		Empleada: orderPartyResponse{ID: o.Empleada.ID, Nombre: o.Empleada.Nombre, Telefono: o.Empleada.Telefono},
		Items:    make([]orderItemResponse, 0, len(o.Items)),
	}
	for i := range o.Items {
		it := &o.Items[i]
		item := orderItemResponse{
			ID:             it.ID,
			Tipo:           it.Tipo,
			ProductoID:     it.ProductoID,
			ServicioID:     it.ServicioID,
			Cantidad:       it.Cantidad,
			PrecioUnitario: money(it.PrecioUnitario),
			Subtotal:       money(it.Subtotal()),
		}
		if p := it.Producto; p != nil {
			item.Producto = &itemProductResponse{
				ID:          p.ID,
				Descripcion: p.Descripcion,
				Precio:      money(p.Precio),
				CategoriaID: p.CategoriaID,
				MarcaID:     p.MarcaID,
			}
		}
		if s := it.Servicio; s != nil {
			item.Servicio = &itemServiceResponse{
				ID:          s.ID,
				Descripcion: s.Descripcion,
				Precio:      money(s.Precio),
				CategoriaID: s.CategoriaID,
			}
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}

type userResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	CreadoEn string `json:"creado_en"`
}

func toUser(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin, CreadoEn: timestamp(u.CreadoEn)}
}

type loginResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	Token    string `json:"token,omitempty"`
}

// mapSlice renders every element of a listing.
func mapSlice[T any, R any](items []T, fn func(*T) R) []R {
	out := make([]R, 0, len(items))
	for i := range items {
		out = append(out, fn(&items[i]))
	}
	return out
}
