package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventMatchReported EventType = "match-reported"
	EventPointsDecayed EventType = "points-decayed"
)

// PointsDecayedEvent is published after a decay run changes a ladder.
type PointsDecayedEvent struct {
	LadderID  int64 `msgpack:"ladder_id"`
	WeeksLeft int   `msgpack:"weeks_left"`
}
