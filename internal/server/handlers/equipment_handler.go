package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrifleet/internal/domain/equipment"
)

// FleetService is the registry behind the equipment endpoints.
type FleetService interface {
	List() []equipment.Snapshot
	Get(serial string) (equipment.Snapshot, error)
	Inspect(serial string, fn func(equipment.Equipment)) error
	RegisterRecord(ctx context.Context, spec equipment.RecordSpec) (equipment.Snapshot, error)
	RegisterVehicle(ctx context.Context, spec equipment.VehicleSpec) (equipment.Snapshot, error)
	RegisterTractor(ctx context.Context, spec equipment.TractorSpec) (equipment.Snapshot, error)
	RegisterImplement(ctx context.Context, spec equipment.ImplementSpec) (equipment.Snapshot, error)
	Retire(ctx context.Context, serial string) error
}

// Summarizer renders readable equipment reports.
type Summarizer interface {
	EquipmentSummary(e equipment.Equipment) string
	FleetReport() string
}

// EquipmentHandler exposes the fleet registry over HTTP.
type EquipmentHandler struct {
	fleet     FleetService
	summaries Summarizer
	logger    *zap.Logger
}

// NewEquipmentHandler constructs the HTTP handler adapter.
func NewEquipmentHandler(fleet FleetService, summaries Summarizer, logger *zap.Logger) *EquipmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EquipmentHandler{fleet: fleet, summaries: summaries, logger: logger}
}

// List returns every registered record.
func (h *EquipmentHandler) List(c *gin.Context) {
	snapshots := h.fleet.List()
	if snapshots == nil {
		snapshots = []equipment.Snapshot{}
	}
	c.JSON(http.StatusOK, gin.H{"equipment": snapshots})
}

// Get returns one record with its readable summary.
func (h *EquipmentHandler) Get(c *gin.Context) {
	serial := c.Param("serial")

	var (
		snap    equipment.Snapshot
		summary string
	)
	err := h.fleet.Inspect(serial, func(e equipment.Equipment) {
		snap = e.Snapshot()
		summary = h.summaries.EquipmentSummary(e)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"equipment": snap, "summary": summary})
}

// RegisterRecord adds a generic record.
func (h *EquipmentHandler) RegisterRecord(c *gin.Context) {
	var spec equipment.RecordSpec
	register(c, h, &spec, func(ctx context.Context) (equipment.Snapshot, error) {
		return h.fleet.RegisterRecord(ctx, spec)
	})
}

// RegisterVehicle adds a powered vehicle.
func (h *EquipmentHandler) RegisterVehicle(c *gin.Context) {
	var spec equipment.VehicleSpec
	register(c, h, &spec, func(ctx context.Context) (equipment.Snapshot, error) {
		return h.fleet.RegisterVehicle(ctx, spec)
	})
}

// RegisterTractor adds an implement carrier.
func (h *EquipmentHandler) RegisterTractor(c *gin.Context) {
	var spec equipment.TractorSpec
	register(c, h, &spec, func(ctx context.Context) (equipment.Snapshot, error) {
		return h.fleet.RegisterTractor(ctx, spec)
	})
}

// RegisterImplement adds a wearable implement.
func (h *EquipmentHandler) RegisterImplement(c *gin.Context) {
	var spec equipment.ImplementSpec
	register(c, h, &spec, func(ctx context.Context) (equipment.Snapshot, error) {
		return h.fleet.RegisterImplement(ctx, spec)
	})
}

func register(c *gin.Context, h *EquipmentHandler, spec any, create func(context.Context) (equipment.Snapshot, error)) {
	if err := c.ShouldBindJSON(spec); err != nil {
		h.logger.Warn("invalid equipment payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snap, err := create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, snap)
}

// Retire removes a record from the fleet.
func (h *EquipmentHandler) Retire(c *gin.Context) {
	if err := h.fleet.Retire(c.Request.Context(), c.Param("serial")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FleetReport returns the readable report of the whole fleet.
func (h *EquipmentHandler) FleetReport(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"report": h.summaries.FleetReport()})
}
