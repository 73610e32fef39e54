package handlers

import (
	"net/http"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"github.com/Alexistodj124/kiarasoftwareback/internal/pkg/utils"
	"github.com/gin-gonic/gin"
)

type userHandler struct {
	h *Handler
}

func (uh *userHandler) list(c *gin.Context) {
	users, err := uh.h.svc.Users.List(c.Request.Context())
	if err != nil {
		uh.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(users, toUser))
}

func (uh *userHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := uh.h.svc.Users.Get(c.Request.Context(), id)
	if err != nil {
		uh.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUser(u))
}

func (uh *userHandler) create(c *gin.Context) {
	var req userRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := uh.h.svc.Users.Create(c.Request.Context(),
		utils.Deref(req.Username), utils.Deref(req.Password), utils.Deref(req.IsAdmin))
	if err != nil {
		uh.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUser(u))
}

func (uh *userHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req userRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := uh.h.svc.Users.Update(c.Request.Context(), models.UserUpdate{
		ID:       id,
		Username: req.Username,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		uh.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUser(u))
}

func (uh *userHandler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := uh.h.svc.Users.Delete(c.Request.Context(), id); err != nil {
		uh.h.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Usuario eliminado"})
}
