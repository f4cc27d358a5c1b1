package event

import (
	"encoding/json"
	"fmt"
)

// Marshal encodes an event as a JSON object with a "type" discriminator.
func Marshal(e Event) ([]byte, error) {
	switch e := e.(type) {
	case SetLogged:
		return json.Marshal(struct {
			Type Type `json:"type"`
			SetLogged
		}{TypeSetLogged, e})
	case ExerciseStarted:
		e.Feedback = CloneFeedback(e.Feedback)
		return json.Marshal(struct {
			Type Type `json:"type"`
			ExerciseStarted
		}{TypeExerciseStarted, e})
	case ExerciseCompleted:
		e.Feedback = CloneFeedback(e.Feedback)
		return json.Marshal(struct {
			Type Type `json:"type"`
			ExerciseCompleted
		}{TypeExerciseCompleted, e})
	case WorkoutCompleted:
		return json.Marshal(struct {
			Type Type `json:"type"`
			WorkoutCompleted
		}{TypeWorkoutCompleted, e})
	default:
		return nil, fmt.Errorf("marshal: unknown event %T", e)
	}
}

// Unmarshal decodes a single JSON event produced by Marshal.
func Unmarshal(data []byte) (Event, error) {
	var head struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decoding event type: %w", err)
	}

	switch head.Type {
	case TypeSetLogged:
		var e SetLogged
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", head.Type, err)
		}
		return e, nil
	case TypeExerciseStarted:
		var e ExerciseStarted
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", head.Type, err)
		}
		e.Feedback = CloneFeedback(e.Feedback)
		return e, nil
	case TypeExerciseCompleted:
		var e ExerciseCompleted
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", head.Type, err)
		}
		e.Feedback = CloneFeedback(e.Feedback)
		return e, nil
	case TypeWorkoutCompleted:
		var e WorkoutCompleted
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", head.Type, err)
		}
		return e, nil
	case "":
		return nil, fmt.Errorf("event has no type")
	default:
		return nil, fmt.Errorf("unknown event type %q", head.Type)
	}
}

// MarshalList encodes events as a JSON array, preserving order.
func MarshalList(events []Event) ([]byte, error) {
	raw := make([]json.RawMessage, 0, len(events))
	for i, e := range events {
		b, err := Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		raw = append(raw, b)
	}
	return json.Marshal(raw)
}

// UnmarshalList decodes a JSON array of events, preserving order.
func UnmarshalList(data []byte) ([]Event, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding event list: %w", err)
	}
	events := make([]Event, 0, len(raw))
	for i, r := range raw {
		e, err := Unmarshal(r)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, e)
	}
	return events, nil
}

// ToWire encodes a list of events for embedding in a response body.
func ToWire(events []Event) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(events))
	for _, e := range events {
		b, err := Marshal(e)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
