package handlers

import (
	"net/http"
	"strings"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"github.com/Alexistodj124/kiarasoftwareback/internal/pkg/utils"
	"github.com/gin-gonic/gin"
)

type clientHandler struct {
	h *Handler
}

func (ch *clientHandler) list(c *gin.Context) {
	clients, err := ch.h.svc.Clients.List(c.Request.Context(), models.DirectoryFilter{
		Query: strings.TrimSpace(c.Query("q")),
	})
	if err != nil {
		ch.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(clients, toClient))
}

func (ch *clientHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	client, err := ch.h.svc.Clients.Get(c.Request.Context(), id)
	if err != nil {
		ch.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClient(client))
}

func (ch *clientHandler) create(c *gin.Context) {
	var req clientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := ch.h.svc.Clients.Create(c.Request.Context(), utils.Deref(req.Nombre), utils.Deref(req.Telefono))
	if err != nil {
		ch.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toClient(client))
}

func (ch *clientHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req clientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := ch.h.svc.Clients.Update(c.Request.Context(), models.ClientUpdate{
		ID:       id,
		Nombre:   req.Nombre,
		Telefono: req.Telefono,
	})
	if err != nil {
		ch.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClient(client))
}

func (ch *clientHandler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := ch.h.svc.Clients.Delete(c.Request.Context(), id); err != nil {
		ch.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cliente eliminado"})
}

type employeeHandler struct {
	h *Handler
}

func (eh *employeeHandler) list(c *gin.Context) {
	activo, ok := queryBool(c, "activo")
	if !ok {
		return
	}
	employees, err := eh.h.svc.Employees.List(c.Request.Context(), models.DirectoryFilter{
		Query:  strings.TrimSpace(c.Query("q")),
		Activo: activo,
	})
	if err != nil {
		eh.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(employees, toEmployee))
}

func (eh *employeeHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	emp, err := eh.h.svc.Employees.Get(c.Request.Context(), id)
	if err != nil {
		eh.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEmployee(emp))
}

func (eh *employeeHandler) create(c *gin.Context) {
	var req employeeRequest
	if !bindJSON(c, &req) {
		return
	}
	emp, err := eh.h.svc.Employees.Create(c.Request.Context(), utils.Deref(req.Nombre), req.Telefono.Patch(), req.Activo)
	if err != nil {
		eh.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toEmployee(emp))
}

func (eh *employeeHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req employeeRequest
	if !bindJSON(c, &req) {
		return
	}
	emp, err := eh.h.svc.Employees.Update(c.Request.Context(), models.EmployeeUpdate{
		ID:       id,
		Nombre:   req.Nombre,
		Telefono: req.Telefono.Patch(),
		Activo:   req.Activo,
	})
	if err != nil {
		eh.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEmployee(emp))
}

func (eh *employeeHandler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := eh.h.svc.Employees.Delete(c.Request.Context(), id); err != nil {
		eh.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Empleada eliminada"})
}
