package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/service"
)

func (h *Handler) QuoteCart(c *gin.Context) {
	var req service.CartQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	totals, err := h.orders.QuoteCart(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (h *Handler) Checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.IdempotencyKey = c.GetHeader("Idempotency-Key")

	result, err := h.orders.Checkout(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type webhookPayload struct {
	Type   string `json:"type" binding:"required"`
	Intent struct {
		ID string `json:"id" binding:"required"`
	} `json:"payment_intent"`
}

// PaymentWebhook handles gateway notifications. Only successful
// payments change state; everything else is acknowledged and dropped.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if payload.Type != "payment_intent.succeeded" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	order, err := h.orders.MarkPaid(c.Request.Context(), payload.Intent.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "order_id": order.ID})
}

func (h *Handler) ListOrders(c *gin.Context) {
	status := model.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	orders, err := h.orders.ListOrders(c.Request.Context(), status, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	order, err := h.orders.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
