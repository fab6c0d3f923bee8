package attendance

import (
	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/sse"
)

type ssePublisher struct {
	hub *sse.Hub
}

// NewSSEPublisher streams accepted events to the dashboards subscribed to the
// event's company.
func NewSSEPublisher(hub *sse.Hub) attendance.Publisher {
	return &ssePublisher{hub: hub}
}

func (p *ssePublisher) PublishEvent(companyID string, event attendance.EventResponse) {
	p.hub.Publish(companyID, sse.Event{
		ID:    event.ID,
		Event: "attendance",
		Data:  event,
	})
}
