package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/catalog-service/internal/app/outbox"
)

// EventLister lists recorded domain events, newest first.
type EventLister interface {
	List(ctx context.Context, f outbox.EventFilter) ([]outbox.Event, int64, error)
}

// EventsHandler serves GET /events.
type EventsHandler struct {
	events EventLister
}

func NewEventsHandler(events EventLister) *EventsHandler {
	return &EventsHandler{events: events}
}

// List accepts eventType, aggregateId, status and limit query parameters.
// An unparsable limit falls back to the default.
func (h *EventsHandler) List(c *gin.Context) {
	f := outbox.EventFilter{
		EventType:   c.Query("eventType"),
		AggregateID: c.Query("aggregateId"),
		Status:      c.Query("status"),
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		f.Limit = limit
	}

	events, total, err := h.events.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := EventListResponse{Events: make([]EventResponse, 0, len(events)), TotalCount: total}
	for _, ev := range events {
		resp.Events = append(resp.Events, eventToResponse(ev))
	}
	c.JSON(http.StatusOK, resp)
}
