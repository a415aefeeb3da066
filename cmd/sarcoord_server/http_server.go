package main

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openrescue/sarcoord/internal/model"
	"github.com/openrescue/sarcoord/pkg/log"
)

type HTTPServer struct {
	f    *fiber.App
	addr string
}

func NewHTTPServer(app *App, addr string) *HTTPServer {
	srv := &HTTPServer{addr: addr}

	srv.f = fiber.New(fiber.Config{EnablePrintRoutes: false, DisableStartupMessage: true})

	srv.f.Use(log.NewFiberLogger(&log.LoggerConfig{
		Name:          "http",
		UserGetter:    Username,
		DoMetrics:     true,
		LogErrorsOnly: true,
	}))

	srv.f.Get("/metrics", getMetricsHandler())

	api := srv.f.Group("/api", getUserAuth(app.users))

	api.Get("/missions", getMissionsHandler(app))
	api.Post("/missions", addMissionHandler(app))
	api.Get("/missions/:id", getMissionHandler(app))
	api.Post("/missions/:id/close", closeMissionHandler(app))

	api.Get("/missions/:id/timeline", getTimelineHandler(app))
	api.Post("/missions/:id/timeline", addTimelineEntryHandler(app))

	api.Post("/missions/:id/users", addMissionUserHandler(app))
	api.Put("/missions/:id/users/:username", updateMissionUserHandler(app))

	api.Post("/missions/:id/organizations", addMissionOrgHandler(app))
	api.Put("/missions/:id/organizations/:oid", updateMissionOrgHandler(app))
	api.Delete("/missions/:id/organizations/:oid", removeMissionOrgHandler(app))

	api.Get("/missions/:id/assets", getMissionAssetsHandler(app))
	api.Post("/missions/:id/assets", addMissionAssetHandler(app))
	api.Delete("/missions/:id/assets/:aid", removeMissionAssetHandler(app))
	api.Get("/missions/:id/assets/:aid/status", getAssetStatusHandler(app))
	api.Post("/missions/:id/assets/:aid/status", setAssetStatusHandler(app))

	api.Get("/status_values", getStatusValuesHandler(app))

	api.Get("/assets", getAssetsHandler(app))
	api.Get("/assets/:id", getAssetHandler(app))
	api.Get("/assets/:id/command", getLastCommandHandler(app))
	api.Post("/assets/:id/position", addPositionHandler(app))

	api.Post("/commands", issueCommandHandler(app))
	api.Post("/commands/:id/ack", ackCommandHandler(app))

	srv.f.Get("/ws/missions/:id", getUserAuth(app.users), getTimelineWsHandler(app))

	return srv
}

func (srv *HTTPServer) Address() string {
	return srv.addr
}

func (srv *HTTPServer) Listen() error {
	return srv.f.Listen(srv.addr)
}

func (srv *HTTPServer) Shutdown() error {
	return srv.f.Shutdown()
}

func getMetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(
		prometheus.DefaultGatherer,
		promhttp.HandlerOpts{DisableCompression: true},
	))
}

// errStatus maps domain errors to their HTTP status family. A non-member
// probing a mission gets the same 404 as a missing mission.
func errStatus(ctx *fiber.Ctx, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrNotFound):
		return ctx.SendStatus(fiber.StatusNotFound)
	case errors.Is(err, model.ErrForbidden):
		return ctx.SendStatus(fiber.StatusForbidden)
	case errors.Is(err, model.ErrConflict):
		return ctx.SendStatus(fiber.StatusConflict)
	case errors.Is(err, model.ErrValidation):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return err
	}
}

func paramID(ctx *fiber.Ctx, name string) (uint, error) {
	id, err := ctx.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, model.ErrValidation
	}

	return uint(id), nil
}
