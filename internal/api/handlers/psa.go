package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slabworks/card-pos/backend/internal/models"
	"github.com/slabworks/card-pos/backend/internal/services"
)

type PSAHandler struct {
	psaService *services.PSAService
}

func NewPSAHandler(psa *services.PSAService) *PSAHandler {
	return &PSAHandler{psaService: psa}
}

// LookupCert fetches and parses a PSA certificate. Not-found, timeout
// and transport failures map to distinct responses so the client can
// offer a retry only where retrying can help.
func (h *PSAHandler) LookupCert(c *gin.Context) {
	cert := c.Param("cert")

	record, err := h.psaService.LookupCert(c.Request.Context(), cert)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCertNotFound):
			c.JSON(http.StatusNotFound, models.PSALookupResponse{
				Success: false,
				Error:   "cert not found",
			})
		case services.IsTimeoutError(err):
			c.JSON(http.StatusGatewayTimeout, models.PSALookupResponse{
				Success: false,
				Error:   "PSA lookup timed out",
				Timeout: true,
			})
		default:
			c.JSON(http.StatusBadGateway, models.PSALookupResponse{
				Success: false,
				Error:   err.Error(),
			})
		}
		return
	}

	parsed := services.ParsePSARecord(*record)
	c.JSON(http.StatusOK, models.PSALookupResponse{
		Success: true,
		PSA:     record,
		Parsed:  &parsed,
	})
}
