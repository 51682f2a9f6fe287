package handlers

import (
	"net/http"

	"go-pos-local/internal/models"
	"go-pos-local/internal/repository"
	"go-pos-local/internal/session"

	"github.com/gin-gonic/gin"
)

// --- Time clock (current user) ---

func (h *Handler) GetTimeCard(c *gin.Context) {
	card, err := h.term.TimeCard()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *Handler) PunchIn(c *gin.Context) {
	entry, err := h.term.PunchIn()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) PunchOut(c *gin.Context) {
	entry, err := h.term.PunchOut()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// --- Employees ---

func publicUsers(users []models.User) []models.User {
	out := make([]models.User, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return out
}

func (h *Handler) GetEmployees(c *gin.Context) {
	c.JSON(http.StatusOK, publicUsers(h.repos.Employees.List()))
}

func (h *Handler) AddEmployee(c *gin.Context) {
	var input repository.EmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	// Built-in accounts always win at login, so the employee could never sign in.
	if session.IsBuiltinEmail(input.Email) {
		c.JSON(http.StatusConflict, gin.H{"error": "This email is reserved"})
		return
	}
	user, err := h.repos.Employees.Create(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user.Public())
}

func (h *Handler) UpdateEmployee(c *gin.Context) {
	var input repository.EmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if session.IsBuiltinEmail(input.Email) {
		c.JSON(http.StatusConflict, gin.H{"error": "This email is reserved"})
		return
	}
	user, err := h.repos.Employees.Update(c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

func (h *Handler) DeleteEmployee(c *gin.Context) {
	h.repos.Employees.Delete(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted successfully"})
}
