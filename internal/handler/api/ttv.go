// Package api exposes the analysis pipeline over HTTP: campaign submission,
// catalog lookups, stored series retrieval, and the progress stream.
package api

import (
	"time"

	"github.com/labstack/echo/v4"

	models "TTVPull/internal/domain/models"
	drepo "TTVPull/internal/domain/repository"
	dservice "TTVPull/internal/domain/service"
	"TTVPull/internal/usecase"
	xhttp "TTVPull/pkg/http"
	xlogger "TTVPull/pkg/logger"
	"TTVPull/pkg/util"
)

// TTVHandler implements the campaign and planet endpoints.
type TTVHandler struct {
	logger  *xlogger.Logger
	runner  *usecase.CampaignRunner
	catalog dservice.Catalog
	store   drepo.CampaignStore
}

func NewTTVHandler(logger *xlogger.Logger, runner *usecase.CampaignRunner, catalog dservice.Catalog, store drepo.CampaignStore) *TTVHandler {
	return &TTVHandler{logger: logger, runner: runner, catalog: catalog, store: store}
}

func (h *TTVHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/campaigns", h.RunCampaign)
	g.GET("/campaigns", h.ListCampaigns)
	g.GET("/campaigns/:id", h.GetCampaign)
	g.GET("/campaigns/:id/ttv", h.GetSeries)
	g.GET("/campaigns/:id/transits", h.GetTransits)
	g.GET("/planets/:name", h.GetPlanet)
}

// RunCampaign executes the full pipeline synchronously and returns the
// result. Long-running runs are expected; clients follow progress over the
// WebSocket stream or submit via the Kafka request topic instead.
func (h *TTVHandler) RunCampaign(c echo.Context) error {
	req := &models.RunCampaignRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.runner.Run(c.Request().Context(), usecase.NewCampaignInput(req))
	if err != nil {
		h.logger.Error("campaign usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, res)
}

// ListCampaigns lists stored campaign headers, optionally filtered by planet
// and started_at time range.
func (h *TTVHandler) ListCampaigns(c echo.Context) error {
	planet := c.QueryParam("planet")
	from := util.ParseTimeDefault(c.QueryParam("from"), time.Time{})
	to := util.ParseTimeDefault(c.QueryParam("to"), time.Time{})
	limit := util.ParseIntDefault(c.QueryParam("limit"), 50)

	rows, err := h.store.List(c.Request().Context(), planet, from, to, limit)
	if err != nil {
		h.logger.Error("list campaigns error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *TTVHandler) GetCampaign(c echo.Context) error {
	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.store.Get(c.Request().Context(), req.CampaignID)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// GetSeries returns the stored residual series of a campaign, as the three
// parallel arrays.
func (h *TTVHandler) GetSeries(c echo.Context) error {
	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.store.Get(c.Request().Context(), req.CampaignID)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res.Series)
}

// transitPoint is one row of the transit-center series.
type transitPoint struct {
	Epoch int     `json:"epoch"`
	Tc    float64 `json:"tc"`
	TcErr float64 `json:"tc_err"`
}

// GetTransits returns the per-transit center estimates of a campaign.
func (h *TTVHandler) GetTransits(c echo.Context) error {
	req := &models.TransitsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.store.Get(c.Request().Context(), req.CampaignID)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	obs := res.Observations
	if len(obs) > req.Limit {
		obs = obs[:req.Limit]
	}
	points := make([]transitPoint, len(obs))
	for i, o := range obs {
		points[i] = transitPoint{Epoch: o.Epoch, Tc: o.Tc.N, TcErr: o.Tc.S}
	}
	return xhttp.ListResponse(c, points, int64(len(res.Observations)))
}

// planetResponse is the catalog record plus the ephemeris derived from it.
type planetResponse struct {
	Name          string           `json:"name"`
	CatalogID     int64            `json:"catalog_id"`
	StellarMass   float64          `json:"stellar_mass"`
	PlanetMass    float64          `json:"planet_mass"`
	MassReference string           `json:"mass_reference"`
	Ephemeris     models.Ephemeris `json:"ephemeris"`
}

// GetPlanet looks a planet up in the catalog and returns its properties and
// reference ephemeris.
func (h *TTVHandler) GetPlanet(c echo.Context) error {
	req := &models.PlanetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	p, err := h.catalog.Properties(c.Request().Context(), req.Name)
	if err != nil {
		h.logger.Error("planet lookup error", xlogger.String("planet", req.Name), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, planetResponse{
		Name:          p.Name,
		CatalogID:     p.CatalogID,
		StellarMass:   p.StellarMass,
		PlanetMass:    p.PlanetMass,
		MassReference: p.MassReference,
		Ephemeris:     p.Ephemeris(),
	})
}
