package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var ErrDuplicateParticipant = errors.New("participant already joined")

const (
	DefaultFocusDuration = 25 * 60
	DefaultBreakDuration = 5 * 60

	defaultName  = "Anonymous"
	defaultEmoji = "👤"
	defaultColor = "#FFFFFF"
)

// Broadcaster fans coordinator output out to all connected observers.
// Both methods are invoked while the coordinator holds its mutex, so the
// emission order seen by observers matches the mutation order. Implementations
// must not block.
type Broadcaster interface {
	State(State)
	Message(Message)
}

// Coordinator owns the room state and the message log. Every command takes
// the mutex for its full read-modify-broadcast cycle; no intermediate state
// is ever observable.
type Coordinator struct {
	mu       sync.Mutex
	state    State
	messages []Message

	bc     Broadcaster
	clock  clockwork.Clock
	driver *tickDriver
}

func New(bc Broadcaster, clock clockwork.Clock, focusDuration, breakDuration int) *Coordinator {
	return &Coordinator{
		state: State{
			Status:        PhaseIdle,
			TimeRemaining: 0,
			FocusDuration: focusDuration,
			BreakDuration: breakDuration,
			Users:         []Participant{},
		},
		bc:    bc,
		clock: clock,
	}
}

// Snapshot returns a copy of the current room state for a newly connected
// observer.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Messages returns a copy of the full notification backlog.
func (c *Coordinator) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Join adds a participant to the roster. Empty fields get placeholder
// defaults. A second join from the same connection id is rejected.
func (c *Coordinator) Join(id, name, emoji, color string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.findLocked(id) >= 0 {
		return ErrDuplicateParticipant
	}
	if name == "" {
		name = defaultName
	}
	if emoji == "" {
		emoji = defaultEmoji
	}
	if color == "" {
		color = defaultColor
	}
	c.state.Users = append(c.state.Users, Participant{
		ID:       id,
		Name:     name,
		Emoji:    emoji,
		IsActive: true,
		Color:    color,
	})
	c.broadcastStateLocked()
	c.appendMessageLocked(fmt.Sprintf("%s joined", name))
	return nil
}

// Start enters the focus phase at full duration and (re)arms the tick
// driver. Calling it while a timer is already running restarts the countdown;
// the previous driver is cancelled before the new one is armed.
func (c *Coordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Status = PhaseFocus
	c.state.TimeRemaining = c.state.FocusDuration
	c.broadcastStateLocked()
	c.startDriverLocked()
}

// Reset stops any running timer and returns the room to idle. Idempotent.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopDriverLocked()
	c.state.Status = PhaseIdle
	c.state.TimeRemaining = 0
	c.broadcastStateLocked()
}

// ToggleActive flips the active flag of the participant with the given
// connection id. An unknown id is benign; the state is broadcast either way.
func (c *Coordinator) ToggleActive(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.findLocked(id); i >= 0 {
		c.state.Users[i].IsActive = !c.state.Users[i].IsActive
	}
	c.broadcastStateLocked()
}

// Disconnect removes the participant for a closed connection. When the last
// participant leaves, the timer is stopped and the room state returns to its
// initial value.
func (c *Coordinator) Disconnect(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.findLocked(id)
	var name string
	if i >= 0 {
		name = c.state.Users[i].Name
		c.state.Users = append(c.state.Users[:i], c.state.Users[i+1:]...)
	}
	if len(c.state.Users) == 0 {
		c.stopDriverLocked()
		c.state.Status = PhaseIdle
		c.state.TimeRemaining = 0
		c.state.Users = []Participant{}
	}
	c.broadcastStateLocked()
	if i >= 0 {
		c.appendMessageLocked(fmt.Sprintf("%s left", name))
	}
}

// Tick advances the countdown by one second. Normally invoked by the tick
// driver; exposed so the countdown semantics can be exercised directly.
func (c *Coordinator) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickLocked()
}

// tickFrom applies a tick only if the given driver is still the live one.
// A tick delivered by a superseded driver is discarded, which is what makes
// the at-most-one-driver invariant hold even when cancel races a firing tick.
func (c *Coordinator) tickFrom(d *tickDriver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.driver != d {
		return
	}
	c.tickLocked()
}

func (c *Coordinator) tickLocked() {
	if c.state.Status == PhaseIdle {
		return
	}
	c.state.TimeRemaining--
	c.broadcastStateLocked()
	if c.state.TimeRemaining > 0 {
		return
	}
	switch c.state.Status {
	case PhaseFocus:
		c.state.Status = PhaseBreak
		c.state.TimeRemaining = c.state.BreakDuration
		for i := range c.state.Users {
			if c.state.Users[i].IsActive {
				c.state.Users[i].SessionsCompleted++
			}
		}
		for _, u := range c.state.Users {
			if u.IsActive && u.SessionsCompleted > 0 {
				c.appendMessageLocked(fmt.Sprintf("🎉 %s completed session %d", u.Name, u.SessionsCompleted))
			}
		}
		c.broadcastStateLocked()
	case PhaseBreak:
		c.state.Status = PhaseIdle
		c.state.TimeRemaining = 0
		c.stopDriverLocked()
		c.broadcastStateLocked()
	}
}

func (c *Coordinator) findLocked(id string) int {
	for i := range c.state.Users {
		if c.state.Users[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Coordinator) snapshotLocked() State {
	st := c.state
	st.Users = make([]Participant, len(c.state.Users))
	copy(st.Users, c.state.Users)
	return st
}

func (c *Coordinator) broadcastStateLocked() {
	c.bc.State(c.snapshotLocked())
}

func (c *Coordinator) appendMessageLocked(text string) {
	m := Message{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: c.clock.Now().UnixMilli(),
	}
	c.messages = append(c.messages, m)
	c.bc.Message(m)
}
