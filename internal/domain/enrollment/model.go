package enrollment

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxEmailLength = 254
)

// Domain errors. The texts are returned verbatim to service clients.
var (
	ErrActivityNotFound = errors.New("Activity not found")
	ErrAlreadySignedUp  = errors.New("Student already signed up")
	ErrNotSignedUp      = errors.New("Student is not signed up for this activity")
)

// Activity holds state for one extracurricular activity offered by the service.
type Activity struct {
	ID              string
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Position        int
}

// Validate checks if the Activity has valid data.
// PRE: Activity struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name is non-empty; MaxParticipants is not negative
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("activity name cannot be empty")
	}
	if len(a.Name) > MaxNameLength {
		return errors.New("activity name cannot exceed 100 characters")
	}
	if a.MaxParticipants < 0 {
		return errors.New("max participants cannot be negative")
	}
	return nil
}

// Participant is one email registered for an activity.
type Participant struct {
	ID         string
	ActivityID string
	Email      string
	JoinedAt   time.Time
}

// Validate checks if the Participant has valid data.
// PRE: Participant struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: ActivityID is set; Email is non-empty and bounded
func (p *Participant) Validate() error {
	if p.ActivityID == "" {
		return errors.New("participant activity is required")
	}
	if strings.TrimSpace(p.Email) == "" {
		return errors.New("participant email cannot be empty")
	}
	if len(p.Email) > MaxEmailLength {
		return errors.New("participant email cannot exceed 254 characters")
	}
	return nil
}

// Roster is an activity together with its participants in join order.
type Roster struct {
	Activity     Activity
	Participants []Participant
}

// Emails returns the participant emails in join order.
func (r Roster) Emails() []string {
	out := make([]string, 0, len(r.Participants))
	for _, p := range r.Participants {
		out = append(out, p.Email)
	}
	return out
}

// Has reports whether email is already registered.
func (r Roster) Has(email string) bool {
	for _, p := range r.Participants {
		if p.Email == email {
			return true
		}
	}
	return false
}

// SignupMessage is the confirmation returned after a successful signup.
func SignupMessage(email, activity string) string {
	return fmt.Sprintf("Signed up %s for %s", email, activity)
}

// UnregisterMessage is the confirmation returned after a successful removal.
func UnregisterMessage(email, activity string) string {
	return fmt.Sprintf("Unregistered %s from %s", email, activity)
}
