package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/service"
)

func (h *Handler) ListMenu(c *gin.Context) {
	items, err := h.menu.ListAvailable(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if items == nil {
		items = []model.MenuItem{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetMenuItem(c *gin.Context) {
	item, err := h.menu.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) ListMenuAdmin(c *gin.Context) {
	items, err := h.menu.ListAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if items == nil {
		items = []model.MenuItem{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateMenuItem(c *gin.Context) {
	var req service.CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.menu.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateMenuItem(c *gin.Context) {
	var req service.UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.menu.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
