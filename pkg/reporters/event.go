package reporters

import (
	"time"

	"github.com/samvad-hq/apicall/pkg/apicall"
)

// Event represents the diagnostic payload delivered to sinks.
type Event struct {
	App        string          `json:"app"`
	Env        string          `json:"env"`
	Failure    apicall.Failure `json:"failure"`
	ReportedAt time.Time       `json:"reported_at"`
}

// NewEvent constructs an Event for the given failure.
func NewEvent(app, env string, f apicall.Failure) Event {
	return Event{
		App:        app,
		Env:        env,
		Failure:    f,
		ReportedAt: time.Now().UTC(),
	}
}

// attributes are the routing attributes attached by message-based sinks.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"app":        e.App,
		"kind":       string(e.Failure.Kind),
		"failure_id": e.Failure.ID,
	}
}
