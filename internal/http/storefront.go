package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
)

type deliveryQuoteRequest struct {
	Lat float64 `json:"lat" binding:"required"`
	Lon float64 `json:"lon" binding:"required"`
}

func (h *Handler) QuoteDelivery(c *gin.Context) {
	var req deliveryQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.delivery.Quote(c.Request.Context(), req.Lat, req.Lon)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *Handler) LoyaltyProfile(c *gin.Context) {
	customer, err := h.customers.GetByID(c.Request.Context(), c.Param("customer_id"))
	if err != nil {
		fail(c, err)
		return
	}

	account, events, err := h.loyalty.Profile(c.Request.Context(), customer.ID)
	if err != nil {
		fail(c, err)
		return
	}
	if events == nil {
		events = []model.LoyaltyEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer, "account": account, "events": events})
}

type newsletterRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *Handler) SubscribeNewsletter(c *gin.Context) {
	var req newsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.news.Subscribe(c.Request.Context(), req.Email); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "subscribed"})
}

func (h *Handler) ListZones(c *gin.Context) {
	zones, err := h.delivery.ListZones(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if zones == nil {
		zones = []model.DeliveryZone{}
	}
	c.JSON(http.StatusOK, zones)
}

type createZoneRequest struct {
	Name       string  `json:"name" binding:"required"`
	RadiusKm   float64 `json:"radius_km" binding:"required,gt=0"`
	FeeCents   int64   `json:"fee_cents" binding:"gte=0"`
	ETAMinutes int     `json:"eta_minutes" binding:"gte=0"`
}

func (h *Handler) CreateZone(c *gin.Context) {
	var req createZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	zone := &model.DeliveryZone{
		ID:         uuid.New().String(),
		Name:       req.Name,
		RadiusKm:   req.RadiusKm,
		FeeCents:   req.FeeCents,
		ETAMinutes: req.ETAMinutes,
	}
	if err := h.delivery.CreateZone(c.Request.Context(), zone); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, zone)
}

func (h *Handler) DeleteZone(c *gin.Context) {
	if err := h.delivery.DeleteZone(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
