package handlers

import (
	"net/http"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/controller"
	"github.com/gin-gonic/gin"
)

type orderHandler struct {
	h *Handler
}

func (oh *orderHandler) list(c *gin.Context) {
	q := controller.OrderQuery{Inicio: c.Query("inicio"), Fin: c.Query("fin")}
	var ok bool
	if q.ClienteID, ok = queryID(c, "cliente_id"); !ok {
		return
	}
	if q.EmpleadaID, ok = queryID(c, "empleada_id"); !ok {
		return
	}
	orders, err := oh.h.svc.Orders.List(c.Request.Context(), q)
	if err != nil {
		oh.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(orders, toOrder))
}

func (oh *orderHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := oh.h.svc.Orders.Get(c.Request.Context(), id)
	if err != nil {
		oh.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(order))
}

func (oh *orderHandler) create(c *gin.Context) {
	var req orderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := oh.h.svc.Orders.Create(c.Request.Context(), req.toInput())
	if err != nil {
		oh.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrder(order))
}

func (oh *orderHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req orderPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := oh.h.svc.Orders.Update(c.Request.Context(), req.toPatch(id))
	if err != nil {
		oh.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(order))
}

func (oh *orderHandler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := oh.h.svc.Orders.Delete(c.Request.Context(), id); err != nil {
		oh.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Orden eliminada"})
}
