package handler

import (
	"errors"
	"net/http"

	"github.com/energy-data-api/internal/middleware"
	"github.com/energy-data-api/internal/service"
	"github.com/energy-data-api/internal/stream"
	"github.com/energy-data-api/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Reads are public, so is the live feed
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EnergyHandler handles energy data API requests
type EnergyHandler struct {
	energyService *service.EnergyService
	hub           *stream.Hub
}

// NewEnergyHandler creates a new EnergyHandler
func NewEnergyHandler(energyService *service.EnergyService, hub *stream.Hub) *EnergyHandler {
	return &EnergyHandler{
		energyService: energyService,
		hub:           hub,
	}
}

// RegisterRoutes registers the energy data endpoints. Reads are public
// by policy; only record creation requires a token.
func (h *EnergyHandler) RegisterRoutes(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	r.GET("/energy_data", h.ListAll)
	r.GET("/energy_data/filter", h.ListFiltered)
	r.POST("/energy_data/filter", h.ListFiltered)
	r.GET("/energy_data/summary", h.Summary)
	if h.hub != nil {
		r.GET("/energy_data/live", h.Live)
	}

	r.POST("/energy_data", authMiddleware, h.CreateRecord)
}

// ListAll returns every energy record
// GET /energy_data
func (h *EnergyHandler) ListAll(c *gin.Context) {
	records, err := h.energyService.ListAll()
	if err != nil {
		response.InternalError(c, "failed to list energy data")
		return
	}
	response.Data(c, records)
}

// ListFiltered returns the records matching the criteria, taken from
// query parameters on GET and from the JSON body on POST
// GET|POST /energy_data/filter
func (h *EnergyHandler) ListFiltered(c *gin.Context) {
	var req service.FilterRequest
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	} else {
		if err := c.ShouldBindQuery(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	records, err := h.energyService.ListFiltered(&req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, "failed to filter energy data")
		return
	}
	response.Data(c, records)
}

// CreateRecord stores a new energy record owned by the token subject
// POST /energy_data (bearer token)
func (h *EnergyHandler) CreateRecord(c *gin.Context) {
	var req service.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	subject := middleware.GetSubject(c)
	record, err := h.energyService.CreateRecord(subject, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.BadRequest(c, "User not found")
		case errors.Is(err, service.ErrValidation):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "failed to create energy data")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Energy data created successfully",
		"data":    record,
	})
}

// Summary returns per-source aggregate totals
// GET /energy_data/summary
func (h *EnergyHandler) Summary(c *gin.Context) {
	summaries, err := h.energyService.Summary(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to summarize energy data")
		return
	}
	response.Data(c, summaries)
}

// Live upgrades to a websocket and streams newly created records
// GET /energy_data/live
func (h *EnergyHandler) Live(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response
		return
	}
	h.hub.Register(conn)
}
