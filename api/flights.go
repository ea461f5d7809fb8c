package api

import (
	"net/http"

	"github.com/Julius14h/FlyNext/internal/service/flights"
	"github.com/gin-gonic/gin"
)

// FlightHandler proxies the AFS lookup endpoints. No business logic lives
// here; the routes exist because they share the AFS client.
type FlightHandler struct {
	service flights.SearchUseCase
}

func NewFlightHandler(service flights.SearchUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/flights", h.search(flights.SearchFlights))
	router.GET("/airports", h.search(flights.SearchAirports))
	router.GET("/cities", h.search(flights.SearchCities))
	router.GET("/airlines", h.search(flights.SearchAirlines))
}

func (h *FlightHandler) search(kind flights.SearchKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := h.service.Search(c.Request.Context(), kind, c.Request.URL.Query())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json", payload)
	}
}
