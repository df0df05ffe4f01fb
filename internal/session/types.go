package session

// Phase is the current stage of the shared timer cycle.
type Phase string

const (
	PhaseIdle  Phase = "idle"
	PhaseFocus Phase = "focus"
	PhaseBreak Phase = "break"
)

// Participant is one connected user in the shared roster. The ID is the
// connection id assigned by the transport and is stable for the lifetime
// of the connection.
type Participant struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Emoji             string `json:"emoji"`
	IsActive          bool   `json:"isActive"`
	SessionsCompleted int    `json:"sessionsCompleted"`
	Color             string `json:"color"`
}

// State is the single authoritative room state broadcast to every observer.
type State struct {
	Status        Phase         `json:"status"`
	TimeRemaining int           `json:"timeRemaining"` // seconds
	FocusDuration int           `json:"focusDuration"` // seconds
	BreakDuration int           `json:"breakDuration"` // seconds
	Users         []Participant `json:"users"`
}

// Message is one entry in the append-only room notification log.
type Message struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}
