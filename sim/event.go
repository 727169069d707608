package sim

type EventKind string

const (
	EventTick         EventKind = "TICK"
	EventNews         EventKind = "NEWS"
	EventIntervention EventKind = "INTERVENTION"
	EventFinished     EventKind = "FINISHED"
	EventTrade        EventKind = "TRADE"
	EventPanicSell    EventKind = "PANIC_SELL"
)

// Event is emitted for every observable change. Snapshot is taken at the
// moment the event happened.
type Event struct {
	Kind     EventKind
	Text     string
	Snapshot Snapshot
}
