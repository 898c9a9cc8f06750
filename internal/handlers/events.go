package handlers

import "github.com/docket-dev/docket/internal/realtime"

// Publisher receives case activity after a successful write.
type Publisher interface {
	Publish(caseID string, ev realtime.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, realtime.Event) {}

func publisherOrNoop(p Publisher) Publisher {
	if p == nil {
		return noopPublisher{}
	}

	return p
}
