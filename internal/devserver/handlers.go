package devserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/tphakala/duckwatch/internal/errors"
	"github.com/tphakala/duckwatch/internal/sighting"
)

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

func (s *Server) handleError(c echo.Context, err error, message string, code int) error {
	resp := ErrorResponse{
		Error:         message,
		Message:       message,
		Code:          code,
		CorrelationID: uuid.NewString()[:8],
	}
	if err != nil {
		resp.Error = err.Error()
	}

	s.logger.Warn("API error",
		"correlation_id", resp.CorrelationID,
		"message", message,
		"error", resp.Error,
		"code", code,
		"path", c.Path())

	return c.JSON(code, resp)
}

// listSightings handles GET /sightings
func (s *Server) listSightings(c echo.Context) error {
	records := s.store.List()
	dtos := make([]sighting.RecordDTO, 0, len(records))
	for _, r := range records {
		dtos = append(dtos, sighting.NewRecordDTO(r))
	}
	return c.JSON(http.StatusOK, dtos)
}

// listSpecies handles GET /species
func (s *Server) listSpecies(c echo.Context) error {
	names := s.store.Species()
	dtos := make([]sighting.SpeciesDTO, 0, len(names))
	for _, name := range names {
		dtos = append(dtos, sighting.SpeciesDTO{Name: name})
	}
	return c.JSON(http.StatusOK, dtos)
}

// createSighting handles POST /sightings
func (s *Server) createSighting(c echo.Context) error {
	var req sighting.CreateRequest
	if err := c.Bind(&req); err != nil {
		return s.handleError(c, err, "Invalid request body", http.StatusBadRequest)
	}

	record, err := s.store.Add(req)
	if err != nil {
		if errors.IsValidation(err) {
			return s.handleError(c, err, "Invalid sighting", http.StatusBadRequest)
		}
		return s.handleError(c, err, "Failed to store sighting", http.StatusInternalServerError)
	}

	if s.metrics != nil {
		s.metrics.SetSightingsStored(s.store.Len())
	}
	s.logger.Info("sighting created", "id", record.ID, "species", record.Species, "count", record.Count)

	return c.JSON(http.StatusCreated, sighting.NewRecordDTO(record))
}
