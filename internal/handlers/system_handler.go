package handlers

import (
	"fmt"
	"net/http"

	"go-pos-local/internal/repository"
	"go-pos-local/internal/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "online"})
}

// GetSystemStatus reports the device and whether a session is open.
func (h *Handler) GetSystemStatus(c *gin.Context) {
	_, loggedIn := h.term.CurrentUser()
	c.JSON(http.StatusOK, gin.H{
		"device_id":       utils.GetDeviceID(),
		"storage":         h.cfg.DBDriver,
		"session_active":  loggedIn,
		"assistant_ready": h.agent != nil,
	})
}

// --- Settings ---

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.repos.Settings.Get())
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	settings, err := h.repos.Settings.Update(fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// --- Backup ---

// ExportBackup downloads every collection as one JSON file tagged with this device.
func (h *Handler) ExportBackup(c *gin.Context) {
	snap := h.repos.Export()
	snap.DeviceID = utils.GetDeviceID()
	filename := fmt.Sprintf("pos-backup-%s.json", snap.ExportedAt.Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) ImportBackup(c *gin.Context) {
	var snap repository.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": repository.ErrInvalidSnapshot.Error()})
		return
	}
	if err := h.repos.Import(snap); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Data imported successfully"})
}
