package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/agrifleet/internal/domain/equipment"
	"github.com/mamadbah2/agrifleet/internal/service/commands"
	"github.com/mamadbah2/agrifleet/internal/service/fleet"
)

// errorStatus maps service and equipment errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, fleet.ErrUnknownEquipment):
		return http.StatusNotFound
	case errors.Is(err, equipment.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, equipment.ErrBreakdown):
		return http.StatusConflict
	case errors.Is(err, equipment.ErrMissingParts):
		return http.StatusFailedDependency
	case errors.Is(err, fleet.ErrUnsupportedOperation),
		errors.Is(err, commands.ErrInvalidArguments),
		errors.Is(err, commands.ErrUnsupportedCommand):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorBody carries the typed error payload when there is one.
func errorBody(err error) gin.H {
	body := gin.H{"error": err.Error()}

	var (
		validationErr *equipment.ValidationError
		breakdownErr  *equipment.BreakdownError
		partsErr      *equipment.MissingPartsError
	)
	switch {
	case errors.As(err, &validationErr):
		body["kind"] = "validation"
		body["field"] = validationErr.Field
	case errors.As(err, &breakdownErr):
		body["kind"] = "breakdown"
		body["failure"] = breakdownErr.FailureKind
		body["last_maintenance"] = breakdownErr.LastMaintenance
	case errors.As(err, &partsErr):
		body["kind"] = "missing_parts"
		body["part"] = partsErr.Part
		body["wait_days"] = partsErr.WaitDays
	}
	return body
}

func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	c.JSON(status, errorBody(err))
}
