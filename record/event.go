package record

import "strconv"

// EventID tags why a snapshot was logged. Values outside the known set are
// preserved as-is.
type EventID int32

const (
	EventSnapshot       EventID = 1
	EventEjection       EventID = 2
	EventInitial        EventID = 3
	EventFinal          EventID = 4
	EventCloseEncounter EventID = 5
)

var eventNames = map[EventID]string{
	EventSnapshot:       "snapshot",
	EventEjection:       "ejection",
	EventInitial:        "initial",
	EventFinal:          "final",
	EventCloseEncounter: "close_encounter",
}

func (e EventID) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return "event(" + strconv.Itoa(int(e)) + ")"
}

// ParseEventID accepts either a known event name or a numeric id.
func ParseEventID(s string) (EventID, error) {
	for id, name := range eventNames {
		if name == s {
			return id, nil
		}
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return EventID(v), nil
}
