package mobility

import "fmt"

// UnknownLocationError is returned when a location name has no entry in the
// known-location table.
type UnknownLocationError struct {
	Name string
}

func (e *UnknownLocationError) Error() string {
	return fmt.Sprintf("unknown location %q", e.Name)
}

// MissingTravelTimeError is returned when the travel-time matrix has no
// entry for a start/end pair.
type MissingTravelTimeError struct {
	From string
	To   string
}

func (e *MissingTravelTimeError) Error() string {
	return fmt.Sprintf("missing travel time %q -> %q", e.From, e.To)
}
