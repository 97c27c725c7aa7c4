// Package api exposes a region registry over HTTP with gin.
package api

import (
	"bytes"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/episim/episim/sim"
	"github.com/episim/episim/sim/export"
	"github.com/episim/episim/sim/region"
)

// Handler serves region CRUD, calibration and prediction over one registry.
// The registry is not safe for concurrent use, so every request holds mu.
type Handler struct {
	mu  sync.Mutex
	reg *region.Registry
}

// NewHandler creates a handler over reg.
func NewHandler(reg *region.Registry) *Handler {
	return &Handler{reg: reg}
}

// RegionView is the JSON form of a region.
type RegionView struct {
	ID uuid.UUID `json:"id"`
	region.Counts
	Active  int              `json:"active"`
	Risk    region.RiskLevel `json:"risk"`
	Records int              `json:"records"`
}

func viewOf(r *region.Region) RegionView {
	return RegionView{
		ID:      r.ID,
		Counts:  r.Counts,
		Active:  r.Active(),
		Risk:    r.Risk(),
		Records: len(r.History()),
	}
}

// PredictRequest configures a projection. Beta and Gamma default to the
// simulator defaults; Calibrate takes both from the region's history instead.
type PredictRequest struct {
	Beta      *float64 `json:"beta" binding:"omitempty,gte=0"`
	Gamma     *float64 `json:"gamma" binding:"omitempty,gte=0"`
	Days      int      `json:"days" binding:"gte=0,lte=3650"`
	Calibrate bool     `json:"calibrate"`
}

// PredictResponse is the projected trajectory and its metrics.
type PredictResponse struct {
	Beta    float64      `json:"beta"`
	Gamma   float64      `json:"gamma"`
	Metrics *sim.Metrics `json:"metrics"`
	History []sim.State  `json:"history"`
}

// Register mounts the routes under /api/v1.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/api/v1")
	v1.GET("/dashboard", h.Dashboard)
	v1.GET("/regions", h.List)
	v1.POST("/regions", h.Create)
	v1.GET("/regions/:id", h.Get)
	v1.PUT("/regions/:id", h.Update)
	v1.DELETE("/regions/:id", h.Delete)
	v1.POST("/regions/:id/records", h.AddRecord)
	v1.GET("/regions/:id/estimate", h.Estimate)
	v1.POST("/regions/:id/predict", h.Predict)
	v1.GET("/regions/:id/history.csv", h.HistoryCSV)
}

// NewRouter builds a gin engine with recovery middleware and the API routes.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	h.Register(router)
	return router
}

// Dashboard returns totals across all regions.
func (h *Handler) Dashboard(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.JSON(http.StatusOK, h.reg.Totals())
}

// List returns every region, or those whose name contains the q query parameter.
func (h *Handler) List(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	regions := h.reg.Search(c.Query("q"))
	views := make([]RegionView, 0, len(regions))
	for _, r := range regions {
		views = append(views, viewOf(r))
	}
	c.JSON(http.StatusOK, views)
}

// Create adds a region.
func (h *Handler) Create(c *gin.Context) {
	var req region.Counts
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	r, err := h.reg.Add(req)
	if err != nil {
		writeError(c, err)
		return
	}
	logrus.Infof("Created region %s (%s)", r.Name, r.ID)
	c.JSON(http.StatusCreated, viewOf(r))
}

// Get returns one region.
func (h *Handler) Get(c *gin.Context) {
	h.withRegion(c, func(r *region.Region) {
		c.JSON(http.StatusOK, viewOf(r))
	})
}

// Update replaces a region's counts.
func (h *Handler) Update(c *gin.Context) {
	var req region.Counts
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.withRegion(c, func(r *region.Region) {
		if _, err := h.reg.Update(r.ID, req); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, viewOf(r))
	})
}

// Delete removes a region.
func (h *Handler) Delete(c *gin.Context) {
	h.withRegion(c, func(r *region.Region) {
		if err := h.reg.Delete(r.ID); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

// AddRecord upserts one day of cumulative counts and returns the history.
func (h *Handler) AddRecord(c *gin.Context) {
	var rec region.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if rec.Confirmed < 0 || rec.Recovered < 0 || rec.Deaths < 0 || rec.Confirmed < rec.Removed() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "record counts must be non-negative and confirmed must cover recovered plus deaths"})
		return
	}
	h.withRegion(c, func(r *region.Region) {
		r.AddRecord(rec)
		c.JSON(http.StatusOK, r.History())
	})
}

// Estimate returns beta and gamma calibrated from the region's history.
func (h *Handler) Estimate(c *gin.Context) {
	h.withRegion(c, func(r *region.Region) {
		c.JSON(http.StatusOK, r.Calibrate())
	})
}

// Predict runs a projection for the region.
func (h *Handler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.withRegion(c, func(r *region.Region) {
		beta, gamma := sim.DefaultBeta, sim.DefaultGamma
		if req.Beta != nil {
			beta = *req.Beta
		}
		if req.Gamma != nil {
			gamma = *req.Gamma
		}
		if req.Calibrate {
			res := r.Calibrate()
			beta, gamma = res.Beta, res.Gamma
		}
		history := r.Predict(beta, gamma, req.Days)
		c.JSON(http.StatusOK, PredictResponse{
			Beta:    beta,
			Gamma:   gamma,
			Metrics: sim.ComputeMetrics(r.Simulation()),
			History: history,
		})
	})
}

// HistoryCSV returns the region's latest simulated trajectory as CSV.
func (h *Handler) HistoryCSV(c *gin.Context) {
	h.withRegion(c, func(r *region.Region) {
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, r.Simulation().History()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	})
}

// withRegion resolves the :id parameter and calls fn with the lock held.
func (h *Handler) withRegion(c *gin.Context, fn func(r *region.Region)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid region id"})
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	r, err := h.reg.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}
	fn(r)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, region.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, region.ErrEmptyName),
		errors.Is(err, region.ErrPopulationBelowConfirmed),
		errors.Is(err, region.ErrConfirmedBelowRemoved):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logrus.Errorf("Unhandled API error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
