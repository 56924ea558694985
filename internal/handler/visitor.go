package handler

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jagatstore/jagat-backend/internal/repository"
)

// VisitorHandler serves the visitor analytics endpoints.
type VisitorHandler struct {
	Visitors *repository.VisitorRepo
	Log      *zap.Logger
}

func NewVisitorHandler(v *repository.VisitorRepo, log *zap.Logger) *VisitorHandler {
	return &VisitorHandler{Visitors: v, Log: log}
}

type countryStat struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// Count is the public visitor counter.
func (h *VisitorHandler) Count(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"totalVisitors": len(h.Visitors.All()),
	})
}

// Stats returns the per-country breakdown, sorted by count descending.
func (h *VisitorHandler) Stats(c echo.Context) error {
	visitors := h.Visitors.All()

	byCountry := map[string]int{}
	for _, v := range visitors {
		country := v.Country
		if country == "" {
			country = "Unknown"
		}
		byCountry[country]++
	}

	stats := make([]countryStat, 0, len(byCountry))
	for country, count := range byCountry {
		stats = append(stats, countryStat{Country: country, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Country < stats[j].Country
	})

	return c.JSON(http.StatusOK, echo.Map{
		"totalVisitors":   len(visitors),
		"uniqueCountries": len(stats),
		"countryStats":    stats,
	})
}
