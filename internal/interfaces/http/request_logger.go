package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hospital-api/pkg/logger"
)

// HTTPObserver recibe la duración de cada petición (lo implementa metrics.Prometheus).
type HTTPObserver interface {
	ObserveHTTP(method, route string, code int, durationMs float64)
}

// RequestLogger registra cada petición con zerolog y la pasa al observer si hay uno.
func RequestLogger(log *logger.Logger, obs HTTPObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// deja que el ErrorHandler de fiber escriba la respuesta antes de leer el status
			if hErr := c.App().ErrorHandler(c, err); hErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		elapsed := time.Since(start)
		code := c.Response().StatusCode()
		route := c.Route().Path

		ev := log.Info()
		if code >= fiber.StatusInternalServerError {
			ev = log.Error()
		} else if code >= fiber.StatusBadRequest {
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", route).
			Int("status", code).
			Dur("latency", elapsed).
			Str("user_id", GetUserID(c)).
			Msg("http")

		if obs != nil {
			obs.ObserveHTTP(c.Method(), route, code, float64(elapsed.Microseconds())/1000)
		}
		return nil
	}
}
