package handlers

import (
	"net/http"
	"strings"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/controller"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"github.com/Alexistodj124/kiarasoftwareback/internal/pkg/utils"
	"github.com/gin-gonic/gin"
)

// catalogFilter reads q, sort, order, categoria_id and marca_id.
func catalogFilter(c *gin.Context) (models.CatalogFilter, bool) {
	f := models.CatalogFilter{
		Query: strings.TrimSpace(c.Query("q")),
		Sort:  strings.ToLower(c.Query("sort")),
	}
	switch strings.ToLower(c.DefaultQuery("order", "asc")) {
	case "asc":
	case "desc":
		f.Desc = true
	default:
		abortWithError(c, http.StatusBadRequest, "order debe ser asc o desc")
		return f, false
	}
	var ok bool
	if f.CategoriaID, ok = queryID(c, "categoria_id"); !ok {
		return f, false
	}
	if f.MarcaID, ok = queryID(c, "marca_id"); !ok {
		return f, false
	}
	return f, true
}

type productHandler struct {
	h *Handler
}

func (p *productHandler) list(c *gin.Context) {
	f, ok := catalogFilter(c)
	if !ok {
		return
	}
	products, err := p.h.svc.Products.List(c.Request.Context(), f)
	if err != nil {
		p.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(products, toProduct))
}

func (p *productHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	product, err := p.h.svc.Products.Get(c.Request.Context(), id)
	if err != nil {
		p.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProduct(product))
}

func (p *productHandler) create(c *gin.Context) {
	var req productRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	product, err := p.h.svc.Products.Create(c.Request.Context(), in)
	if err != nil {
		p.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": product.ID})
}

func (p *productHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req productRequest
	if !bindJSON(c, &req) {
		return
	}
	update, err := req.toUpdate(id)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := p.h.svc.Products.Update(c.Request.Context(), update); err != nil {
		p.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Producto actualizado"})
}

func (p *productHandler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := p.h.svc.Products.Delete(c.Request.Context(), id); err != nil {
		p.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Producto eliminado"})
}

type serviceHandler struct {
	h *Handler
}

func (s *serviceHandler) list(c *gin.Context) {
	f, ok := catalogFilter(c)
	if !ok {
		return
	}
	f.MarcaID = nil
	services, err := s.h.svc.ServiceCatalog.List(c.Request.Context(), f)
	if err != nil {
		s.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(services, toService))
}

func (s *serviceHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	svc, err := s.h.svc.ServiceCatalog.Get(c.Request.Context(), id)
	if err != nil {
		s.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toService(svc))
}

func (s *serviceHandler) create(c *gin.Context) {
	var req serviceRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	svc, err := s.h.svc.ServiceCatalog.Create(c.Request.Context(), in)
	if err != nil {
		s.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": svc.ID})
}

func (s *serviceHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req serviceRequest
	if !bindJSON(c, &req) {
		return
	}
	update, err := req.toUpdate(id)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.h.svc.ServiceCatalog.Update(c.Request.Context(), update); err != nil {
		s.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Servicio actualizado"})
}

func (s *serviceHandler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.h.svc.ServiceCatalog.Delete(c.Request.Context(), id); err != nil {
		s.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Servicio eliminado"})
}

// labelHandler serves one of the brand or category collections.
type labelHandler struct {
	h       *Handler
	svc     *controller.LabelService
	deleted string
}

func (l *labelHandler) list(c *gin.Context) {
	activo, ok := queryBool(c, "activo")
	if !ok {
		return
	}
	labels, err := l.svc.List(c.Request.Context(), models.LabelFilter{Activo: activo})
	if err != nil {
		l.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(labels, toLabel))
}

func (l *labelHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	label, err := l.svc.Get(c.Request.Context(), id)
	if err != nil {
		l.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLabel(label))
}

func (l *labelHandler) create(c *gin.Context) {
	var req labelRequest
	if !bindJSON(c, &req) {
		return
	}
	label, err := l.svc.Create(c.Request.Context(), utils.Deref(req.Nombre), req.Descripcion.Patch(), req.Activo)
	if err != nil {
		l.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toLabel(label))
}

func (l *labelHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req labelRequest
	if !bindJSON(c, &req) {
		return
	}
	label, err := l.svc.Update(c.Request.Context(), models.LabelUpdate{
		ID:          id,
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion.Patch(),
		Activo:      req.Activo,
	})
	if err != nil {
		l.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLabel(label))
}

func (l *labelHandler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := l.svc.Delete(c.Request.Context(), id); err != nil {
		l.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": l.deleted})
}
