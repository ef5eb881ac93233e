package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "work-advisor/internal/common/errors"
	"work-advisor/internal/common/validation"
	"work-advisor/internal/models"
	"work-advisor/internal/prediction/expander"
	"work-advisor/internal/prediction/report"
	"work-advisor/pkg/registry"

	"github.com/gin-gonic/gin"
)

const maxBatchBodyBytes = 1 << 20

// BatchRequest is the body of a batch submission.
type BatchRequest struct {
	Form    models.FormPayload       `json:"form"`
	Regions []models.RegionSelection `json:"regions"`
}

func (s *Server) handleStartBatch(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBatchBodyBytes))
	if err != nil {
		s.errors.HandleRequestError(c, apperrors.NewValidationError("unreadable request body"))
		return
	}

	req, err := ParseBatchRequest(body)
	if err != nil {
		s.errors.HandleRequestError(c, err)
		return
	}
	if err := CheckRegions(s.catalog, req.Regions); err != nil {
		s.errors.HandleRequestError(c, err)
		return
	}

	queue, err := expander.Expand(req.Regions, req.Form)
	if err != nil {
		s.errors.HandleRequestError(c, err)
		return
	}

	run, err := s.runner.RunBatch(c.Request.Context(), queue)
	if err != nil {
		s.errors.HandleRequestError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"runId": run.ID(),
		"total": len(queue),
		"keys":  expander.Keys(queue),
	})
}

func (s *Server) handleCurrentBatch(c *gin.Context) {
	c.JSON(http.StatusOK, s.runner.View())
}

func (s *Server) handleCancelBatch(c *gin.Context) {
	s.runner.Cancel()
	c.JSON(http.StatusOK, s.runner.View())
}

func (s *Server) handleCurrentReport(c *gin.Context) {
	view := s.runner.View()
	c.JSON(http.StatusOK, gin.H{
		"runId":   view.RunID,
		"state":   view.State,
		"summary": report.Summarize(view.Outcomes()),
	})
}

// ParseBatchRequest validates body against the batch schema and decodes it.
func ParseBatchRequest(body []byte) (*BatchRequest, error) {
	res, err := validation.BatchRequest.ValidateBytes(body)
	if err != nil {
		return nil, apperrors.NewValidationError("request body is not valid JSON")
	}
	if !res.Valid {
		return nil, apperrors.NewValidationError(strings.Join(res.GetErrorMessages(), "; "))
	}

	var req BatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	return &req, nil
}

// CheckRegions rejects repeated region codes and anything the catalog does not
// list. Codes and locations are compared trimmed, the way the expander reads them.
func CheckRegions(catalog *registry.RegionCatalog, regions []models.RegionSelection) error {
	seen := make(map[string]bool)
	for _, sel := range regions {
		code := strings.TrimSpace(sel.RegionCode)
		if seen[code] {
			return apperrors.NewValidationError(fmt.Sprintf("duplicate region code: %s", code))
		}
		seen[code] = true

		if catalog == nil {
			continue
		}
		region, ok := catalog.Lookup(code)
		if !ok {
			return apperrors.NewInvalidRegionError(code)
		}
		for _, loc := range sel.Locations {
			loc = strings.TrimSpace(loc)
			if loc == "" {
				continue
			}
			if !region.HasLocation(loc) {
				return apperrors.NewValidationError(fmt.Sprintf("unknown location %q for region %s", loc, code))
			}
		}
	}
	return nil
}
