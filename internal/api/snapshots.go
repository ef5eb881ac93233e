package api

import (
	"net/http"
	"strings"

	apperrors "work-advisor/internal/common/errors"
	"work-advisor/internal/prediction/orchestrator"
	"work-advisor/internal/prediction/report"

	"github.com/gin-gonic/gin"
)

type saveSnapshotRequest struct {
	Name string `json:"name"`
}

// handleSaveSnapshot persists the current batch. Only a completed batch can be saved.
func (s *Server) handleSaveSnapshot(c *gin.Context) {
	var req saveSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errors.HandleRequestError(c, apperrors.NewValidationError("body must be {\"name\": string}"))
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		s.errors.HandleRequestError(c, apperrors.NewValidationError("snapshot name must not be blank"))
		return
	}

	view := s.runner.View()
	if view.State != orchestrator.StateCompleted {
		s.errors.HandleRequestError(c, apperrors.NewBatchNotFinishedError(string(view.State)))
		return
	}

	id, err := s.snapshots.Save(c.Request.Context(), req.Name, view.Payload, view.Outcomes())
	if err != nil {
		s.errors.HandleRequestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "runId": view.RunID})
}

func (s *Server) handleListSnapshots(c *gin.Context) {
	list, err := s.snapshots.List(c.Request.Context())
	if err != nil {
		s.errors.HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": list, "count": len(list)})
}

func (s *Server) handleGetSnapshot(c *gin.Context) {
	snap, err := s.snapshots.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.errors.HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleSnapshotReport(c *gin.Context) {
	snap, err := s.snapshots.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.errors.HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      snap.ID,
		"name":    snap.Name,
		"summary": report.ForSnapshot(snap),
	})
}

func (s *Server) handleDeleteSnapshot(c *gin.Context) {
	if err := s.snapshots.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.errors.HandleRequestError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleClearSnapshots(c *gin.Context) {
	if err := s.snapshots.Clear(c.Request.Context()); err != nil {
		s.errors.HandleRequestError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
