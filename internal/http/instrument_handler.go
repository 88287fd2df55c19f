package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"psyscreen/internal/domain"
	"psyscreen/internal/service"
)

// InstrumentHandler serves catalog views the channel uses to render its menu.
type InstrumentHandler struct {
	logger  *zap.Logger
	catalog *service.Catalog
}

func NewInstrumentHandler(logger *zap.Logger, catalog *service.Catalog) *InstrumentHandler {
	return &InstrumentHandler{
		logger:  logger,
		catalog: catalog,
	}
}

type instrumentSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Mode        string `json:"mode"`
	Questions   int    `json:"questions"`
}

// ListInstruments handles GET /instruments.
func (h *InstrumentHandler) ListInstruments(c *gin.Context) {
	instruments := h.catalog.List()
	summaries := make([]instrumentSummary, 0, len(instruments))
	for _, in := range instruments {
		summaries = append(summaries, summarize(in))
	}
	c.JSON(http.StatusOK, gin.H{"instruments": summaries})
}

// GetInstrument handles GET /instruments/:id.
func (h *InstrumentHandler) GetInstrument(c *gin.Context) {
	in, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrInstrumentNotFound) {
			writeError(c, http.StatusNotFound, "instrument_not_found", "unknown instrument")
			return
		}
		h.logger.Error("get instrument failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"instrument": in})
}

func summarize(in domain.Instrument) instrumentSummary {
	return instrumentSummary{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Mode:        string(in.Mode),
		Questions:   len(in.Questions),
	}
}
