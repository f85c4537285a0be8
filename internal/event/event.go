package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	WalkStarted Type = iota + 1
	EntrySkipped
	WalkComplete
	LayerClosed
	PlanComplete
)

var typeNames = [...]string{
	WalkStarted:  "WalkStarted",
	EntrySkipped: "EntrySkipped",
	WalkComplete: "WalkComplete",
	LayerClosed:  "LayerClosed",
	PlanComplete: "PlanComplete",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from collection or planning.
type Event struct {
	Type      Type
	Timestamp time.Time
	Root      string // ingested root label
	Path      string // entry path (EntrySkipped)
	Label     string // layer label (LayerClosed)
	Files     int    // records in a root or layer; layers in the plan (PlanComplete)
	Bytes     int64
	Err       error
}

// Send delivers e on ch without blocking. Events are advisory: when ch is nil
// nothing is sent, and when the consumer lags the event is dropped.
func Send(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	select {
	case ch <- e:
	default:
	}
}
