package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/pricing"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/promo"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/repo"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/service"
)

type Handler struct {
	menu      *service.MenuService
	orders    *service.OrderService
	loyalty   *service.LoyaltyService
	delivery  *service.DeliveryService
	customers repo.CustomerRepository
	promos    repo.PromoRepository
	validator *promo.Validator
	news      repo.NewsletterRepository
}

func NewHandler(
	menu *service.MenuService,
	orders *service.OrderService,
	loyalty *service.LoyaltyService,
	delivery *service.DeliveryService,
	customers repo.CustomerRepository,
	promos repo.PromoRepository,
	validator *promo.Validator,
	news repo.NewsletterRepository,
) *Handler {
	return &Handler{
		menu:      menu,
		orders:    orders,
		loyalty:   loyalty,
		delivery:  delivery,
		customers: customers,
		promos:    promos,
		validator: validator,
		news:      news,
	}
}

// RegisterRoutes wires the storefront surface and the authenticated
// admin surface.
func (h *Handler) RegisterRoutes(r *gin.Engine, adminAuth gin.HandlerFunc) {
	r.GET("/menu", h.ListMenu)
	r.GET("/menu/:id", h.GetMenuItem)
	r.POST("/cart/quote", h.QuoteCart)
	r.POST("/delivery/quote", h.QuoteDelivery)
	r.POST("/checkout", h.Checkout)
	r.POST("/payments/webhook", h.PaymentWebhook)
	r.GET("/loyalty/:customer_id", h.LoyaltyProfile)
	r.POST("/newsletter/subscribe", h.SubscribeNewsletter)

	admin := r.Group("/admin", adminAuth)
	admin.GET("/orders", h.ListOrders)
	admin.GET("/orders/:id", h.GetOrder)
	admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	admin.POST("/orders/:id/cancel", h.CancelOrder)
	admin.GET("/menu", h.ListMenuAdmin)
	admin.POST("/menu", h.CreateMenuItem)
	admin.PATCH("/menu/:id", h.UpdateMenuItem)
	admin.GET("/zones", h.ListZones)
	admin.POST("/zones", h.CreateZone)
	admin.DELETE("/zones/:id", h.DeleteZone)
	admin.GET("/promos", h.ListPromoCodes)
	admin.POST("/promos", h.CreatePromo)
}

// fail maps service/repo errors onto HTTP statuses: missing records to
// 404, business rule rejections to 422, everything else to 500.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case isRuleViolation(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func isRuleViolation(err error) bool {
	for _, target := range []error{
		service.ErrEmptyOrder,
		service.ErrUnknownItem,
		service.ErrItemUnavailable,
		service.ErrMissingDestination,
		service.ErrDeliveryUnavailable,
		service.ErrInvalidTransition,
		service.ErrNotCancelable,
		service.ErrInsufficientStars,
		repo.ErrStatusConflict,
		promo.ErrUnknownCode,
		promo.ErrInactive,
		promo.ErrExpired,
		promo.ErrMinSubtotal,
		pricing.ErrNoLines,
		pricing.ErrFractionalQuantity,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
