package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"mailminder-backend/internal/monitor/domain"
	"mailminder-backend/internal/monitor/usecase"

	"github.com/gin-gonic/gin"
)

// MonitorHandler handles monitor configuration and settings endpoints
type MonitorHandler struct {
	monitorUsecase usecase.MonitorUsecase
}

// NewMonitorHandler creates a new MonitorHandler
func NewMonitorHandler(monitorUsecase usecase.MonitorUsecase) *MonitorHandler {
	return &MonitorHandler{monitorUsecase: monitorUsecase}
}

func (h *MonitorHandler) CreateMonitor(c *gin.Context) {
	var m domain.Monitor
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.monitorUsecase.CreateMonitor(c.GetString("userID"), &m)
	if err != nil {
		respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *MonitorHandler) UpdateMonitor(c *gin.Context) {
	var m domain.Monitor
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.monitorUsecase.UpdateMonitor(c.GetString("userID"), c.Param("id"), &m)
	if err != nil {
		respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *MonitorHandler) DeleteMonitor(c *gin.Context) {
	if err := h.monitorUsecase.DeleteMonitor(c.GetString("userID"), c.Param("id")); err != nil {
		respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "monitor deleted"})
}

func (h *MonitorHandler) GetMonitor(c *gin.Context) {
	m, err := h.monitorUsecase.GetMonitor(c.GetString("userID"), c.Param("id"))
	if err != nil {
		respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MonitorHandler) GetMonitors(c *gin.Context) {
	monitors, err := h.monitorUsecase.GetMonitors(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"monitors": monitors})
}

func (h *MonitorHandler) SetActive(c *gin.Context) {
	active, err := strconv.ParseBool(c.Query("active"))
	if err != nil {
		var body struct {
			Active *bool `json:"active" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "active flag required"})
			return
		}
		active = *body.Active
	}

	if err := h.monitorUsecase.SetActive(c.GetString("userID"), c.Param("id"), active); err != nil {
		respondUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "monitor updated", "is_active": active})
}

// Estimate computes expected check volume for a schedule without saving it
func (h *MonitorHandler) Estimate(c *gin.Context) {
	var m domain.Monitor
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	estimate, violations := h.monitorUsecase.Estimate(&m)
	if len(violations) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": violations})
		return
	}
	c.JSON(http.StatusOK, estimate)
}

func (h *MonitorHandler) GetSettings(c *gin.Context) {
	settings, err := h.monitorUsecase.GetSettings(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *MonitorHandler) UpdateSettings(c *gin.Context) {
	var s domain.UserSettings
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.monitorUsecase.UpdateSettings(c.GetString("userID"), &s)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// respondUsecaseError maps validation failures to 422 with the full list of
// violations, everything else to 500
func respondUsecaseError(c *gin.Context, err error) {
	var ve *usecase.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": ve.Messages})
		return
	}
	if err.Error() == "monitor not found" {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
