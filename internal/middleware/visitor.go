package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jagatstore/jagat-backend/internal/model"
	"github.com/jagatstore/jagat-backend/internal/repository"
	"github.com/jagatstore/jagat-backend/internal/service"
)

// visitorWindow collapses repeat visits from the same IP into one record.
const visitorWindow = time.Hour

// VisitorTracker records a visitor row (IP, country, timestamp) for
// requests to trackPath.  Tracking is strictly best-effort: a failed
// geolocation lookup or a failed store write is logged and the request
// proceeds untouched.  Loopback callers and repeat visits inside the
// one-hour window are skipped.
func VisitorTracker(trackPath string, visitors *repository.VisitorRepo, geo *service.GeoIPClient, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().URL.Path == trackPath {
				trackVisit(c, visitors, geo, log)
			}
			return next(c)
		}
	}
}

func trackVisit(c echo.Context, visitors *repository.VisitorRepo, geo *service.GeoIPClient, log *zap.Logger) {
	ip := clientIP(c)
	if ip == "" || isLoopback(ip) {
		return
	}
	if visitors.SeenSince(ip, time.Now().Add(-visitorWindow)) {
		return
	}
	country, err := geo.Country(c.Request().Context(), ip)
	if err != nil {
		log.Warn("geolocation lookup failed", zap.String("ip", ip), zap.Error(err))
		return
	}
	if _, err := visitors.Create(model.Visitor{
		IP:        ip,
		Country:   country,
		VisitedAt: time.Now().UTC(),
	}); err != nil {
		log.Warn("visitor record not persisted", zap.String("ip", ip), zap.Error(err))
	}
}

func clientIP(c echo.Context) string {
	ip := c.RealIP()
	// Unwrap IPv4-mapped IPv6 addresses.
	return strings.TrimPrefix(ip, "::ffff:")
}

func isLoopback(ip string) bool {
	return ip == "127.0.0.1" || ip == "::1" || ip == "localhost"
}
