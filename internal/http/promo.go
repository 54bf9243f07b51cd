package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
)

type createPromoRequest struct {
	Code             string     `json:"code" binding:"required"`
	Kind             string     `json:"kind" binding:"required,oneof=percent fixed"`
	Value            int64      `json:"value" binding:"required,gt=0"`
	MinSubtotalCents int64      `json:"min_subtotal_cents" binding:"gte=0"`
	ExpiresAt        *time.Time `json:"expires_at"`
}

// CreatePromo stores a code and reloads the validator's prefilter, so
// the code is redeemable without a restart.
func (h *Handler) CreatePromo(c *gin.Context) {
	var req createPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code := &model.PromoCode{
		Code:             req.Code,
		Kind:             model.DiscountKind(req.Kind),
		Value:            req.Value,
		MinSubtotalCents: req.MinSubtotalCents,
		ExpiresAt:        req.ExpiresAt,
		Active:           true,
	}
	if err := h.promos.Create(c.Request.Context(), code); err != nil {
		fail(c, err)
		return
	}
	if err := h.validator.Load(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, code)
}

func (h *Handler) ListPromoCodes(c *gin.Context) {
	codes, err := h.promos.ListCodes(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if codes == nil {
		codes = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"codes": codes})
}
