package handlers

import (
	"net/http"

	"go-pos-local/internal/checkout"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.term.Cart())
}

func (h *Handler) ClearCart(c *gin.Context) {
	summary, err := h.term.ClearCart()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type CartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

func (h *Handler) AddCartItem(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}
	summary, err := h.term.AddProduct(req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type QuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// UpdateCartItem sets the quantity of a line. Zero or less removes it.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
		return
	}
	summary, err := h.term.SetQuantity(c.Param("id"), *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	summary, err := h.term.RemoveItem(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type VoucherCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *Handler) ApplyVoucher(c *gin.Context) {
	var req VoucherCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Voucher code is required"})
		return
	}
	summary, err := h.term.ApplyVoucher(req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) RemoveVoucher(c *gin.Context) {
	summary, err := h.term.RemoveVoucher()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// --- Checkout ---

func (h *Handler) GetCheckout(c *gin.Context) {
	c.JSON(http.StatusOK, h.term.CheckoutStatus())
}

// Checkout blocks for the payment delay and returns the finished checkout
// status. A client that disconnects during the delay cancels the sale.
func (h *Handler) Checkout(c *gin.Context) {
	var req checkout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if _, err := h.term.Checkout(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.term.CheckoutStatus())
}

func (h *Handler) DismissCheckout(c *gin.Context) {
	if err := h.term.DismissCheckout(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.term.CheckoutStatus())
}
