package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/controller"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/db/dbtest"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/events"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	t      *testing.T
	svc    *controller.Services
	router *gin.Engine
}

func newTestAPI(t *testing.T, authCfg AuthConfig) *testAPI {
	t.Helper()
	logger := zaptest.NewLogger(t)
	svc := controller.NewServices(dbtest.NewRepository(t), events.NopProducer{}, logger)
	return &testAPI{t: t, svc: svc, router: NewHandler(svc, authCfg, logger).Router()}
}

func (a *testAPI) do(method, path string, body any, token ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if len(token) > 0 {
		req.Header.Set("Authorization", "Bearer "+token[0])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, w)["error"]
}

func TestIndexAndCORS(t *testing.T) {
	api := newTestAPI(t, AuthConfig{})

	w := api.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"API funcionando"}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w = api.do(http.MethodOptions, "/productos", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutingErrors(t *testing.T) {
	api := newTestAPI(t, AuthConfig{})

	w := api.do(http.MethodGet, "/productos/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id inválido", errorMessage(t, w))

	w = api.do(http.MethodGet, "/productos/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, "/productos", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "JSON inválido", errorMessage(t, w))

	w = api.do(http.MethodPost, "/productos/1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = api.do(http.MethodGet, "/nada", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductEndpoints(t *testing.T) {
	api := newTestAPI(t, AuthConfig{})

	w := api.do(http.MethodPost, "/productos", map[string]any{
		"descripcion": "Shampoo",
		"marca":       "Sedal",
		"categoria":   "Cabello",
		"costo":       10,
		"precio":      19.99,
		"cantidad":    5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]uint](t, w)
	require.NotZero(t, created["id"])

	w = api.do(http.MethodGet, "/productos/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"precio":19.99`)
	assert.Contains(t, w.Body.String(), `"costo":10.00`)
	product := decode[map[string]any](t, w)
	assert.Equal(t, "Sedal", product["marca"])
	assert.Equal(t, "Cabello", product["categoria"])
	assert.EqualValues(t, 5, product["cantidad"])
	assert.Nil(t, product["imagen"])

	w = api.do(http.MethodPatch, "/productos/1", map[string]any{"categoria": nil, "precio": "21.5"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"Producto actualizado"}`, w.Body.String())

	w = api.do(http.MethodGet, "/productos/1", nil)
	product = decode[map[string]any](t, w)
	assert.Nil(t, product["categoria"])
	assert.Nil(t, product["categoria_id"])
	assert.Equal(t, "Sedal", product["marca"])
	assert.Contains(t, w.Body.String(), `"precio":21.50`)

	w = api.do(http.MethodPut, "/productos/1", map[string]any{"marca": 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "marca 7 no existe", errorMessage(t, w))

	w = api.do(http.MethodPost, "/productos", map[string]any{"descripcion": "x", "costo": 1, "precio": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "precio no puede ser negativo", errorMessage(t, w))

	w = api.do(http.MethodPost, "/productos", map[string]any{"descripcion": "x", "costo": 1, "precio": 1, "marca_id": "Sedal"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "marca_id debe ser numérico", errorMessage(t, w))

	w = api.do(http.MethodGet, "/productos?q=SHAMP&sort=precio&order=desc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = api.do(http.MethodGet, "/productos?sort=costo", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodDelete, "/productos/1", nil)
	assert.JSONEq(t, `{"message":"Producto eliminado"}`, w.Body.String())
	w = api.do(http.MethodGet, "/productos/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServiceEndpoints(t *testing.T) {
	api := newTestAPI(t, AuthConfig{})

	w := api.do(http.MethodPost, "/categorias-servicios", map[string]any{"nombre": "Uñas"})
	require.Equal(t, http.StatusCreated, w.Code)
	cat := decode[map[string]any](t, w)

	w = api.do(http.MethodPost, "/servicios", map[string]any{
		"descripcion":  "Manicure",
		"categoria_id": cat["id"],
		"costo":        "0",
		"precio":       "80",
		"imagen":       "https://img/m.png",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/servicios", nil)
	services := decode[[]map[string]any](t, w)
	require.Len(t, services, 1)
	assert.Equal(t, "Uñas", services[0]["categoria"])
	assert.Equal(t, "https://img/m.png", services[0]["imagen"])
	_, hasBrand := services[0]["marca"]
	assert.False(t, hasBrand)

	w = api.do(http.MethodPut, "/servicios/1", map[string]any{"imagen": nil})
	assert.JSONEq(t, `{"message":"Servicio actualizado"}`, w.Body.String())
	w = api.do(http.MethodGet, "/servicios/1", nil)
	assert.Nil(t, decode[map[string]any](t, w)["imagen"])

	w = api.do(http.MethodDelete, "/categorias-servicios/1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "categoria en uso por 1 servicios", errorMessage(t, w))
}

func TestLabelEndpoints(t *testing.T) {
	api := newTestAPI(t, AuthConfig{})

	w := api.do(http.MethodPost, "/marcas-productos", map[string]any{"nombre": "Sedal", "descripcion": "Cuidado capilar"})
	require.Equal(t, http.StatusCreated, w.Code)
	brand := decode[map[string]any](t, w)
	assert.Equal(t, true, brand["activo"])
	assert.NotEmpty(t, brand["creado_en"])

	w = api.do(http.MethodPost, "/marcas-productos", map[string]any{"nombre": "Sedal"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPost, "/marcas-productos", map[string]any{"nombre": "Dove", "activo": false})
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodGet, "/marcas-productos?activo=false", nil)
	inactive := decode[[]map[string]any](t, w)
	require.Len(t, inactive, 1)
	assert.Equal(t, "Dove", inactive[0]["nombre"])

	w = api.do(http.MethodGet, "/marcas-productos?activo=quizas", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPatch, "/marcas-productos/1", map[string]any{"descripcion": nil, "activo": false})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[map[string]any](t, w)
	assert.Nil(t, updated["descripcion"])
	assert.Equal(t, false, updated["activo"])

	w = api.do(http.MethodDelete, "/marcas-productos/2", nil)
	assert.JSONEq(t, `{"message":"Marca eliminada"}`, w.Body.String())

	w = api.do(http.MethodPost, "/categorias-productos", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "nombre es requerido", errorMessage(t, w))
}

func TestDirectoryEndpoints(t *testing.T) {
	api := newTestAPI(t, AuthConfig{})

	w := api.do(http.MethodPost, "/clientes", map[string]any{"nombre": "Ana", "telefono": "+502 5555 1111"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":1,"nombre":"Ana","telefono":"+502 5555 1111"}`, w.Body.String())

	w = api.do(http.MethodPost, "/clientes", map[string]any{"nombre": "Sin telefono"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/clientes?q=an", nil)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = api.do(http.MethodPut, "/clientes/1", map[string]any{"nombre": "Ana María"})
	assert.Equal(t, "Ana María", decode[map[string]any](t, w)["nombre"])

	w = api.do(http.MethodPost, "/empleadas", map[string]any{"nombre": "Karla", "telefono": "5555"})
	require.Equal(t, http.StatusCreated, w.Code)
	emp := decode[map[string]any](t, w)
	assert.Equal(t, true, emp["activo"])

	w = api.do(http.MethodPatch, "/empleadas/1", map[string]any{"telefono": nil, "activo": false})
	emp = decode[map[string]any](t, w)
	assert.Nil(t, emp["telefono"])
	assert.Equal(t, false, emp["activo"])

	w = api.do(http.MethodGet, "/empleadas?activo=true", nil)
	assert.Empty(t, decode[[]map[string]any](t, w))

	w = api.do(http.MethodDelete, "/empleadas/1", nil)
	assert.JSONEq(t, `{"message":"Empleada eliminada"}`, w.Body.String())
	w = api.do(http.MethodDelete, "/clientes/1", nil)
	assert.JSONEq(t, `{"message":"Cliente eliminado"}`, w.Body.String())
}

func TestOrderEndpoints(t *testing.T) {
	api := newTestAPI(t, AuthConfig{})

	w := api.do(http.MethodPost, "/productos", map[string]any{"descripcion": "Shampoo", "costo": 10, "precio": 25})
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodPost, "/ordenes", map[string]any{
		"codigo":   "ORD-001",
		"fecha":    "2025-11-10T10:10:00",
		"cliente":  map[string]any{"nombre": "Ana", "telefono": "+502 5555 1111"},
		"empleada": map[string]any{"nombre": "Karla"},
		"items": []map[string]any{
			{"tipo": "producto", "producto_id": 1, "cantidad": 2, "precio_unitario": 25.00},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := w.Body.String()
	assert.Contains(t, body, `"total":50.00`)
	assert.Contains(t, body, `"subtotal":50.00`)
	assert.Contains(t, body, `"precio_unitario":25.00`)
	assert.Contains(t, body, `"fecha":"2025-11-10T10:10:00Z"`)

	order := decode[map[string]any](t, w)
	items := order["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "producto", item["tipo"])
	assert.Nil(t, item["servicio"])
	assert.Nil(t, item["servicio_id"])
	assert.Equal(t, "Shampoo", item["producto"].(map[string]any)["descripcion"])
	assert.Equal(t, "Ana", order["cliente"].(map[string]any)["nombre"])

	w = api.do(http.MethodPost, "/ordenes", map[string]any{
		"codigo":   "ORD-002",
		"cliente":  map[string]any{"id": 999},
		"empleada": map[string]any{"id": 1},
		"items":    []map[string]any{{"tipo": "producto", "producto_id": 1, "precio_unitario": 25}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cliente con ese id no existe", errorMessage(t, w))

	w = api.do(http.MethodPost, "/ordenes", map[string]any{
		"codigo":   "ORD-003",
		"fecha":    "mañana",
		"cliente":  map[string]any{"id": 1},
		"empleada": map[string]any{"id": 1},
		"items":    []map[string]any{{"tipo": "producto", "producto_id": 1, "precio_unitario": 25}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "fecha inválida", errorMessage(t, w))

	w = api.do(http.MethodGet, "/ordenes", nil)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = api.do(http.MethodGet, "/ordenes?inicio=2025-11-10T10:10:00Z&fin=2025-11-10T10:10:00Z", nil)
	assert.Len(t, decode[[]map[string]any](t, w), 1)
	w = api.do(http.MethodGet, "/ordenes?inicio=ayer", nil)
	assert.Equal(t, "inicio inválido", errorMessage(t, w))
	w = api.do(http.MethodGet, "/ordenes?cliente_id=x", nil)
	assert.Equal(t, "cliente_id inválido", errorMessage(t, w))

	w = api.do(http.MethodPatch, "/ordenes/1", map[string]any{"cliente_id": 42})
	assert.Equal(t, "cliente_id no válido", errorMessage(t, w))

	w = api.do(http.MethodPut, "/ordenes/1", map[string]any{
		"items": []map[string]any{{"tipo": "producto", "producto_id": 1, "cantidad": 3, "precio_unitario": "20"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"total":60.00`)

	w = api.do(http.MethodDelete, "/productos/1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodDelete, "/ordenes/1", nil)
	assert.JSONEq(t, `{"message":"Orden eliminada"}`, w.Body.String())
	w = api.do(http.MethodGet, "/ordenes/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserEndpointsAndLogin(t *testing.T) {
	api := newTestAPI(t, AuthConfig{JWTSecret: "secret"})

	w := api.do(http.MethodPost, "/usuarios", map[string]any{"username": "ana", "password": "s3cret"})
	require.Equal(t, http.StatusCreated, w.Code)
	user := decode[map[string]any](t, w)
	assert.Equal(t, false, user["is_admin"])
	_, hasHash := user["password_hash"]
	assert.False(t, hasHash)

	w = api.do(http.MethodPost, "/usuarios", map[string]any{"username": "ana", "password": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "username ya existe", errorMessage(t, w))

	w = api.do(http.MethodPost, "/auth/login", map[string]any{"username": "ana", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "credenciales inválidas", errorMessage(t, w))

	w = api.do(http.MethodPost, "/auth/login", map[string]any{"username": "ana"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "username y password son requeridos", errorMessage(t, w))

	w = api.do(http.MethodPost, "/auth/login", map[string]any{"username": "ana", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"username":"ana","is_admin":false}`, w.Body.String())

	w = api.do(http.MethodPatch, "/usuarios/1", map[string]any{"is_admin": true})
	assert.Equal(t, true, decode[map[string]any](t, w)["is_admin"])

	w = api.do(http.MethodDelete, "/usuarios/1", nil)
	assert.JSONEq(t, `{"message":"Usuario eliminado"}`, w.Body.String())
}

func TestAuthEnforced(t *testing.T) {
	api := newTestAPI(t, AuthConfig{JWTSecret: "secret", Required: true})
	ctx := context.Background()
	_, err := api.svc.Users.Create(ctx, "root", "admin-pw", true)
	require.NoError(t, err)
	_, err = api.svc.Users.Create(ctx, "ana", "s3cret", false)
	require.NoError(t, err)

	w := api.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/productos", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = api.do(http.MethodGet, "/productos", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	login := func(username, password string) string {
		w := api.do(http.MethodPost, "/auth/login", map[string]any{"username": username, "password": password})
		require.Equal(t, http.StatusOK, w.Code)
		token := decode[map[string]any](t, w)["token"]
		require.NotEmpty(t, token)
		return token.(string)
	}
	anaToken := login("ana", "s3cret")
	rootToken := login("root", "admin-pw")

	w = api.do(http.MethodGet, "/productos", nil, anaToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/usuarios", nil, anaToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/usuarios", nil, rootToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 2)
}

func TestIDsAreDecimalOnly(t *testing.T) {
	api := newTestAPI(t, AuthConfig{})
	for i := 0; i < 10; i++ {
		w := api.do(http.MethodPost, "/productos", map[string]any{"descripcion": "Producto", "costo": 1, "precio": 2})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	for _, path := range []string{"/productos/010", "/productos/0x3", "/productos/+3"} {
		w := api.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, "id inválido", errorMessage(t, w), path)
	}

	w := api.do(http.MethodDelete, "/productos/010", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.do(http.MethodGet, "/productos/8", nil)
	require.Equal(t, http.StatusOK, w.Code, "product 8 must survive")
	assert.EqualValues(t, 8, decode[map[string]any](t, w)["id"])

	w = api.do(http.MethodGet, "/ordenes?cliente_id=010", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cliente_id inválido", errorMessage(t, w))
}

func TestOrderItemWithBothReferencesRejected(t *testing.T) {
	api := newTestAPI(t, AuthConfig{})
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/productos", map[string]any{"descripcion": "Gel", "costo": 1, "precio": 3}).Code)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/servicios", map[string]any{"descripcion": "Corte", "costo": 0, "precio": 50}).Code)

	w := api.do(http.MethodPost, "/ordenes", map[string]any{
		"codigo":   "ORD-010",
		"cliente":  map[string]any{"nombre": "Ana", "telefono": "5555"},
		"empleada": map[string]any{"nombre": "Karla"},
		"items":    []map[string]any{{"tipo": "producto", "producto_id": 1, "servicio_id": 1, "precio_unitario": 3}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "item de tipo producto no admite servicio_id", errorMessage(t, w))

	w = api.do(http.MethodGet, "/ordenes", nil)
	assert.Empty(t, decode[[]map[string]any](t, w))
	w = api.do(http.MethodGet, "/clientes", nil)
	assert.Empty(t, decode[[]map[string]any](t, w), "inline client rolled back")
}

func TestZeroReferenceRejected(t *testing.T) {
	api := newTestAPI(t, AuthConfig{})

	for _, field := range []string{"marca", "marca_id", "categoria", "categoria_id"} {
		w := api.do(http.MethodPost, "/productos", map[string]any{"descripcion": "Gel", "costo": 1, "precio": 3, field: 0})
		assert.Equal(t, http.StatusBadRequest, w.Code, field)
		assert.Equal(t, "id de referencia debe ser mayor que cero", errorMessage(t, w), field)
	}
	w := api.do(http.MethodGet, "/productos", nil)
	assert.Empty(t, decode[[]map[string]any](t, w))

	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/productos", map[string]any{"descripcion": "Gel", "costo": 1, "precio": 3}).Code)
	w = api.do(http.MethodPatch, "/productos/1", map[string]any{"marca": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
