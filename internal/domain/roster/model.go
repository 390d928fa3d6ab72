package roster

import "fmt"

// Placeholder texts used when an activity record omits a field.
const (
	DefaultDescription = "No description available."
	DefaultSchedule    = "TBD"
)

// Participant is one entry in an activity's participant sequence.
// The upstream service sends either a structured record (optional name/email)
// or a bare value; Fallback holds the text form used when neither name nor
// email resolves.
type Participant struct {
	Name       string
	Email      string
	Fallback   string // compact JSON for structured values, string form for bare values
	Structured bool
}

// Label returns the display label for the participant.
// PRE: none
// POST: Returns Name, else Email, else Fallback
func (p Participant) Label() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Email != "" {
		return p.Email
	}
	return p.Fallback
}

// RemovalKey returns the value sent to the service to unregister this participant.
// PRE: none
// POST: Returns Email when present, otherwise the display label
func (p Participant) RemovalKey() string {
	if p.Email != "" {
		return p.Email
	}
	return p.Label()
}

// Activity is the display-ready projection of one activity record.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants float64 // any finite number the service sends, fractions included
	Participants    []Participant
}

// SpotsLeft returns remaining capacity.
// INVARIANT: not clamped; over-subscribed activities report a negative count
func (a Activity) SpotsLeft() float64 {
	return a.MaxParticipants - float64(len(a.Participants))
}

// FormatCount renders a count the way the service's numbers read: no
// exponent, no trailing zeros ("9", "9.5", "-3").
func FormatCount(n float64) string {
	return formatNumber(n)
}

// RemovalPrompt is the confirmation question asked before unregistering a participant.
func RemovalPrompt(label, activity string) string {
	return fmt.Sprintf("Remove %s from %s?", label, activity)
}
