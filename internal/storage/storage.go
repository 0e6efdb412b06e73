package storage

import "time"

// Route names the branch of the turn pipeline that produced a reply.
type Route string

const (
	RouteConsultation Route = "consultation"
	RouteKnowledge    Route = "knowledge"
	RouteModel        Route = "model"
	RouteModelFailed  Route = "model_failed"
	RouteContactCard  Route = "contact_card"
)

// Event is one completed turn: the user's message and the reply that was sent.
// Events are appended in chronological order.
type Event struct {
	Timestamp         time.Time `json:"timestamp"`
	TurnID            string    `json:"turn_id"`
	UserID            int64     `json:"user_id"`
	Route             Route     `json:"route"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	ContactCaptured   bool      `json:"contact_captured,omitempty"`
}

// Recorder abstracts persistence of turn events.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}
