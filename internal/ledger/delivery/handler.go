package delivery

import (
	"net/http"
	"strconv"

	"mailminder-backend/internal/ledger/repository"

	"github.com/gin-gonic/gin"
)

// LedgerHandler exposes the activity log and check counters
type LedgerHandler struct {
	counterRepo  repository.CheckCounterRepository
	activityRepo repository.ActivityLogRepository
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(counterRepo repository.CheckCounterRepository, activityRepo repository.ActivityLogRepository) *LedgerHandler {
	return &LedgerHandler{counterRepo: counterRepo, activityRepo: activityRepo}
}

// GetActivity returns the user's activity log, newest first
func (h *LedgerHandler) GetActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, total, err := h.activityRepo.ListByUser(c.GetString("userID"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "total": total})
}

// GetCounters returns the user's per-period check counters
func (h *LedgerHandler) GetCounters(c *gin.Context) {
	counters, err := h.counterRepo.ListByUser(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"counters": counters})
}

// ResetCounters zeroes every counter for the user. Rows survive with a reset
// stamp so past quota snapshots stay auditable.
func (h *LedgerHandler) ResetCounters(c *gin.Context) {
	if err := h.counterRepo.ResetAll(c.GetString("userID")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "counters reset"})
}
