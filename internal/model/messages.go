package model

// MessageType tags engine wire messages.
type MessageType string

// Message types exchanged with the engine.
const (
	MessageStart    MessageType = "start"
	MessageProgress MessageType = "progress"
	MessageComplete MessageType = "complete"
	MessageError    MessageType = "error"
)

// StartMessage carries the full configuration of a run.
type StartMessage struct {
	Type           MessageType `json:"type"`
	Iterations     int         `json:"iterations"`
	MainRangeSpec  RangeSpec   `json:"mainRangeSpec"`
	BonusRangeSpec RangeSpec   `json:"bonusRangeSpec"`
	// Seed makes a run reproducible; zero seeds from the clock.
	Seed int64 `json:"seed,omitempty"`
}

// NewStartMessage builds a start command.
func NewStartMessage(iterations int, main, bonus RangeSpec, seed int64) StartMessage {
	return StartMessage{
		Type:           MessageStart,
		Iterations:     iterations,
		MainRangeSpec:  main,
		BonusRangeSpec: bonus,
		Seed:           seed,
	}
}

// Message is one engine-to-caller message.
type Message struct {
	Type              MessageType           `json:"type"`
	RunID             string                `json:"runId"`
	CompletedFraction float64               `json:"completedFraction,omitempty"`
	TrailingDraws     []Draw                `json:"trailingDraws,omitempty"`
	Statistics        *SimulationStatistics `json:"statistics,omitempty"`
	Message           string                `json:"message,omitempty"`
	Err               error                 `json:"-"`
}

// IsTerminal reports whether the message ends a run.
func (m Message) IsTerminal() bool {
	return m.Type == MessageComplete || m.Type == MessageError
}

// Progress returns the progress payload of the message.
func (m Message) Progress() ProgressEvent {
	return ProgressEvent{CompletedFraction: m.CompletedFraction}
}
