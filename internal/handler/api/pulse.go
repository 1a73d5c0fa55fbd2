package api

import (
	"time"

	"github.com/labstack/echo/v4"

	models "MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/handler/ws"
	"MarketPulse/internal/usecase"
	xhttp "MarketPulse/pkg/http"
	xlogger "MarketPulse/pkg/logger"
)

// PulseHandler exposes the signal, trend and match APIs over echo.
type PulseHandler struct {
	logger *xlogger.Logger
	store  drepo.Storage
	orch   *usecase.Orchestrator
	hub    *ws.Hub
}

func NewPulseHandler(logger *xlogger.Logger, store drepo.Storage, orch *usecase.Orchestrator, hub *ws.Hub) *PulseHandler {
	return &PulseHandler{logger: logger, store: store, orch: orch, hub: hub}
}

func (h *PulseHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signals", h.Signals)
	g.POST("/ingest", h.Ingest)
	g.GET("/health", h.Health)
	g.GET("/financial/signals", h.FinancialSignals)
	g.GET("/financial/sectors", h.Sectors)
	g.GET("/product-trends", h.ProductTrends)
	g.GET("/matches", h.Matches)
	g.POST("/generate-matches", h.GenerateMatches)
	e.GET("/ws", h.hub.Handler)
}

func (h *PulseHandler) Signals(c echo.Context) error {
	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	signals, err := h.store.QuerySignals(c.Request().Context(), drepo.SignalFilter{
		Platform: models.ParsePlatform(req.Platform),
		Kind:     models.ParseSignalKind(req.Kind),
		Sector:   req.Sector,
		Since:    xhttp.ParseTimeDefault(req.Since, time.Time{}),
		Limit:    req.Limit,
	})
	if err != nil {
		h.logger.Error("signals query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, echo.Map{"signals": signals, "count": len(signals)})
}

func (h *PulseHandler) Ingest(c echo.Context) error {
	req := &models.IngestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	signals := make([]*models.Signal, 0, len(req.Signals))
	for i := range req.Signals {
		signals = append(signals, &req.Signals[i])
	}
	if err := h.orch.IngestExternal(c.Request().Context(), signals); err != nil {
		h.logger.Error("ingest error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, echo.Map{"ingested": len(signals)})
}

func (h *PulseHandler) Health(c echo.Context) error {
	status := "healthy"
	if err := h.store.Health(c.Request().Context()); err != nil {
		status = "degraded"
	}
	return xhttp.SuccessResponse(c, echo.Map{
		"status":    status,
		"clients":   h.hub.ClientCount(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *PulseHandler) FinancialSignals(c echo.Context) error {
	req := &models.FinancialRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	signals, err := h.store.QueryFinancials(c.Request().Context(), drepo.FinancialFilter{
		Symbol: req.Symbol,
		Sector: req.Sector,
		Limit:  req.Limit,
	})
	if err != nil {
		h.logger.Error("financial query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, echo.Map{"signals": signals, "count": len(signals)})
}

func (h *PulseHandler) Sectors(c echo.Context) error {
	sectors, err := h.store.SectorPerformance(c.Request().Context(), 20)
	if err != nil {
		h.logger.Error("sector query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, echo.Map{"sectors": sectors, "count": len(sectors)})
}

func (h *PulseHandler) ProductTrends(c echo.Context) error {
	req := &models.TrendsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	trends, err := h.store.QueryTrends(c.Request().Context(), drepo.TrendFilter{
		Category: req.Category,
		Status:   models.TrendStatus(req.Status),
		Limit:    req.Limit,
	})
	if err != nil {
		h.logger.Error("trends query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, echo.Map{"trends": trends, "count": len(trends)})
}

func (h *PulseHandler) Matches(c echo.Context) error {
	req := &models.MatchesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	matches, err := h.store.QueryMatches(c.Request().Context(), drepo.MatchFilter{
		PrimaryProduct: req.PrimaryProduct,
		MinScore:       req.MinScore,
		Limit:          req.Limit,
	})
	if err != nil {
		h.logger.Error("matches query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, echo.Map{"matches": matches, "count": len(matches)})
}

func (h *PulseHandler) GenerateMatches(c echo.Context) error {
	req := &models.GenerateMatchesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	matches, err := h.orch.GenerateMatches(c.Request().Context(), req.PrimaryProduct, req.UserGoals)
	if err != nil {
		h.logger.Error("generate matches error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, echo.Map{"matches": matches, "count": len(matches)})
}
