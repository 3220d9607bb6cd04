package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tixpay/internal/service"
)

// ReconcileHandler exposes a manual trigger for the reconciliation loop.
type ReconcileHandler struct {
	reconciler *service.ReconcilerService
}

// NewReconcileHandler creates a new ReconcileHandler.
func NewReconcileHandler(reconciler *service.ReconcilerService) *ReconcileHandler {
	return &ReconcileHandler{reconciler: reconciler}
}

// Reconcile handles POST /v1/reconcile. The run executes synchronously; the
// same single-flight lock as the scheduled job applies.
func (h *ReconcileHandler) Reconcile(c *gin.Context) {
	if err := h.reconciler.Run(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "completed"})
}
