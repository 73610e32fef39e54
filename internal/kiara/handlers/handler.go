// Package handlers exposes the services over HTTP/JSON with gin, translating
// request bodies into service inputs and domain models into responses.
package handlers

import (
	"net/http"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/auth"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/controller"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthConfig controls token enforcement.
type AuthConfig struct {
	JWTSecret string
	Required  bool
}

// Handler holds the dependencies shared by every route.
type Handler struct {
	svc    *controller.Services
	auth   AuthConfig
	logger *zap.Logger
}

func NewHandler(svc *controller.Services, authCfg AuthConfig, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		auth:   authCfg,
		logger: logger.Named("http_handler"),
	}
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(requestLogger(h.logger), recovery(h.logger), cors())
	r.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "recurso no encontrado")
	})
	r.NoMethod(func(c *gin.Context) {
		abortWithError(c, http.StatusMethodNotAllowed, "método no permitido")
	})

	r.GET("/", h.index)
	r.POST("/auth/login", h.login)

	api := r.Group("/", auth.Middleware(h.auth.JWTSecret, h.auth.Required))

	products := &productHandler{h: h}
	resource(api, "/productos", products.list, products.create, products.get, products.update, products.delete)
	services := &serviceHandler{h: h}
	resource(api, "/servicios", services.list, services.create, services.get, services.update, services.delete)

	for path, lh := range map[string]*labelHandler{
		"/categorias-productos": {h: h, svc: h.svc.ProductCategories, deleted: "Categoria eliminada"},
		"/categorias-servicios": {h: h, svc: h.svc.ServiceCategories, deleted: "Categoria eliminada"},
		"/marcas-productos":     {h: h, svc: h.svc.Brands, deleted: "Marca eliminada"},
	} {
		resource(api, path, lh.list, lh.create, lh.get, lh.update, lh.delete)
	}

	clients := &clientHandler{h: h}
	resource(api, "/clientes", clients.list, clients.create, clients.get, clients.update, clients.delete)
	employees := &employeeHandler{h: h}
	resource(api, "/empleadas", employees.list, employees.create, employees.get, employees.update, employees.delete)
	orders := &orderHandler{h: h}
	resource(api, "/ordenes", orders.list, orders.create, orders.get, orders.update, orders.delete)

	admin := api.Group("/", auth.RequireAdmin(h.auth.Required))
	users := &userHandler{h: h}
	resource(admin, "/usuarios", users.list, users.create, users.get, users.update, users.delete)

	return r
}

// resource registers the collection and item routes of one entity. PUT
// and PATCH share the partial update handler.
func resource(g *gin.RouterGroup, path string, list, create, get, update, del gin.HandlerFunc) {
	g.GET(path, list)
	g.POST(path, create)
	g.GET(path+"/:id", get)
	g.PUT(path+"/:id", update)
	g.PATCH(path+"/:id", update)
	g.DELETE(path+"/:id", del)
}

func (h *Handler) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "API funcionando"})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.svc.Users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.mapServiceError(c, err)
		return
	}

	resp := loginResponse{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
	if h.auth.Required {
		token, err := auth.GenerateToken(u.ID, u.Username, u.IsAdmin, h.auth.JWTSecret)
		if err != nil {
			h.mapServiceError(c, err)
			return
		}
		resp.Token = token
	}
	c.JSON(http.StatusOK, resp)
}
