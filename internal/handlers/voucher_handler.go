package handlers

import (
	"net/http"

	"go-pos-local/internal/repository"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetVouchers(c *gin.Context) {
	c.JSON(http.StatusOK, h.repos.Vouchers.List())
}

func (h *Handler) AddVoucher(c *gin.Context) {
	var input repository.VoucherInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	v, err := h.repos.Vouchers.Create(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *Handler) UpdateVoucher(c *gin.Context) {
	var input repository.VoucherInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	v, err := h.repos.Vouchers.Update(c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) ToggleVoucher(c *gin.Context) {
	v, ok := h.repos.Vouchers.Toggle(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) DeleteVoucher(c *gin.Context) {
	h.repos.Vouchers.Delete(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Voucher deleted successfully"})
}
