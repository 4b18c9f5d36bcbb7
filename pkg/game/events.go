package game

// Listener receives simulation events. Calls happen synchronously on the
// goroutine that drives Step.
type Listener interface {
	FoodEaten(FoodEvent)
	LevelUp(LevelEvent)
	GameOver(RunSummary)
}

// ListenerFuncs adapts optional functions to Listener
type ListenerFuncs struct {
	OnFoodEaten func(FoodEvent)
	OnLevelUp   func(LevelEvent)
	OnGameOver  func(RunSummary)
}

func (l ListenerFuncs) FoodEaten(e FoodEvent) {
	if l.OnFoodEaten != nil {
		l.OnFoodEaten(e)
	}
}

func (l ListenerFuncs) LevelUp(e LevelEvent) {
	if l.OnLevelUp != nil {
		l.OnLevelUp(e)
	}
}

func (l ListenerFuncs) GameOver(s RunSummary) {
	if l.OnGameOver != nil {
		l.OnGameOver(s)
	}
}

// Listeners fans every event out to each listener in order
type Listeners []Listener

func (ls Listeners) FoodEaten(e FoodEvent) {
	for _, l := range ls {
		l.FoodEaten(e)
	}
}

func (ls Listeners) LevelUp(e LevelEvent) {
	for _, l := range ls {
		l.LevelUp(e)
	}
}

func (ls Listeners) GameOver(s RunSummary) {
	for _, l := range ls {
		l.GameOver(s)
	}
}

// Event is a tagged simulation event for clients that consume a stream
type Event struct {
	Type    string      `json:"type"` // "food", "levelUp" or "gameOver"
	Food    *FoodEvent  `json:"food,omitempty"`
	Level   *LevelEvent `json:"level,omitempty"`
	Summary *RunSummary `json:"summary,omitempty"`
}

// EventLog is a Listener that buffers events until drained
type EventLog struct {
	events []Event
}

func (l *EventLog) FoodEaten(e FoodEvent) {
	l.events = append(l.events, Event{Type: "food", Food: &e})
}

func (l *EventLog) LevelUp(e LevelEvent) {
	l.events = append(l.events, Event{Type: "levelUp", Level: &e})
}

func (l *EventLog) GameOver(s RunSummary) {
	l.events = append(l.events, Event{Type: "gameOver", Summary: &s})
}

// Drain returns the buffered events and clears the log
func (l *EventLog) Drain() []Event {
	out := l.events
	l.events = nil
	return out
}
