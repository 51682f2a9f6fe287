package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go-pos-local/internal/repository"

	"github.com/gin-gonic/gin"
)

// --- GET: List products, optionally filtered by ?q= and ?category= ---
func (h *Handler) GetProducts(c *gin.Context) {
	products := h.repos.Products.Search(c.Query("q"), c.Query("category"))
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, h.repos.Products.Categories())
}

// --- GET: Scan a barcode straight into the cart ---
func (h *Handler) ScanProduct(c *gin.Context) {
	product, summary, err := h.term.Scan(c.Param("barcode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product, "cart": summary})
}

// --- POST: Add a new product ---
func (h *Handler) AddProduct(c *gin.Context) {
	var input repository.ProductInput

	// 1. Parse JSON Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// 2. Save it
	product, err := h.repos.Products.Create(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// --- PUT: Partial update of any product field ---
func (h *Handler) UpdateProduct(c *gin.Context) {
	id := c.Param("id")

	// We use a map so we only update what was sent (partial update)
	var updateData map[string]any
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	product, err := h.repos.Products.Update(id, updateData)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

// --- DELETE: Remove a product. Past sales keep their own copy of it. ---
func (h *Handler) DeleteProduct(c *gin.Context) {
	h.repos.Products.Delete(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// --- UPLOAD: Handle Image Files ---
func (h *Handler) UploadImage(c *gin.Context) {
	// 1. Get the file from the request
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	// 2. Only allow images
	name := filepath.Base(file.Filename)
	if !imageExtensions[strings.ToLower(filepath.Ext(name))] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only image files can be uploaded"})
		return
	}

	// 3. Generate a unique filename, e.g. "167890123_burger.jpg"
	filename := fmt.Sprintf("%d_%s", time.Now().Unix(), name)
	if err := c.SaveUploadedFile(file, filepath.Join(h.cfg.UploadDir, filename)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File uploaded successfully",
		"url":     strings.TrimRight(h.cfg.BaseURL, "/") + "/uploads/" + filename,
	})
}
