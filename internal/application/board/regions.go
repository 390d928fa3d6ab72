package board

import (
	"fmt"

	"rosterboard/internal/domain/roster"
)

// Fixed texts of the two target regions.
const (
	SelectPlaceholder   = "-- Select an activity --"
	ParticipantsHeading = "Participants"
	EmptyParticipants   = "No participants yet"
	LoadingMessage      = "Loading activities..."
	LoadFailureMessage  = "Failed to load activities. Please try again later."
)

// RemovalControl identifies the participant a removal affordance unregisters.
// Activity and Key are fixed when the row is rendered.
type RemovalControl struct {
	Activity string `json:"activity"`
	Key      string `json:"key"`
	Label    string `json:"label"`
	Prompt   string `json:"prompt"`
}

// Row is one entry in a card's participant list.
type Row struct {
	Label   string          `json:"label"`
	Empty   bool            `json:"empty,omitempty"`
	Removal *RemovalControl `json:"removal,omitempty"`
}

// Card is the rendered form of one activity.
type Card struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Schedule     string  `json:"schedule"`
	SpotsLeft    float64 `json:"spots_left"`
	Availability string  `json:"availability"`
	Heading      string  `json:"heading"`
	Rows         []Row   `json:"rows"`
}

// RosterArea is the region listing activity cards. When Message is set it
// replaces the cards entirely.
type RosterArea struct {
	Cards   []Card `json:"cards"`
	Message string `json:"message,omitempty"`
}

// Option is one entry of the activity selection control.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SelectControl is the activity selection control with its fixed placeholder.
type SelectControl struct {
	Placeholder Option   `json:"placeholder"`
	Options     []Option `json:"options"`
}

// Regions is the explicit handle to both render targets.
type Regions struct {
	Roster RosterArea    `json:"roster"`
	Select SelectControl `json:"select"`
}

// NewRegions returns the regions shown before the first fetch completes.
func NewRegions() Regions {
	return Regions{
		Roster: RosterArea{Cards: []Card{}, Message: LoadingMessage},
		Select: emptySelect(),
	}
}

func emptySelect() SelectControl {
	return SelectControl{
		Placeholder: Option{Value: "", Label: SelectPlaceholder},
		Options:     []Option{},
	}
}

// Availability formats the spots-left line.
func Availability(spotsLeft float64) string {
	return fmt.Sprintf("%s spots left", roster.FormatCount(spotsLeft))
}

// Render replaces both regions with freshly built content for acts.
// PRE: target is non-nil; acts is in directory order
// POST: target holds one card and one option per activity in order; nothing
// from a previous render survives
// INVARIANT: every card title equals the value and label of its option
func Render(target *Regions, acts []roster.Activity) {
	next := Regions{
		Roster: RosterArea{Cards: make([]Card, 0, len(acts))},
		Select: emptySelect(),
	}
	for _, a := range acts {
		next.Roster.Cards = append(next.Roster.Cards, buildCard(a))
		next.Select.Options = append(next.Select.Options, Option{Value: a.Name, Label: a.Name})
	}
	*target = next
}

// RenderFailure replaces the roster with the load failure message and leaves
// the selection control with only its placeholder.
func RenderFailure(target *Regions) {
	*target = Regions{
		Roster: RosterArea{Cards: []Card{}, Message: LoadFailureMessage},
		Select: emptySelect(),
	}
}

func buildCard(a roster.Activity) Card {
	spots := a.SpotsLeft()
	c := Card{
		Title:        a.Name,
		Description:  a.Description,
		Schedule:     a.Schedule,
		SpotsLeft:    spots,
		Availability: Availability(spots),
		Heading:      ParticipantsHeading,
	}
	if len(a.Participants) == 0 {
		c.Rows = []Row{{Label: EmptyParticipants, Empty: true}}
		return c
	}
	c.Rows = make([]Row, 0, len(a.Participants))
	for _, p := range a.Participants {
		label := p.Label()
		c.Rows = append(c.Rows, Row{
			Label: label,
			Removal: &RemovalControl{
				Activity: a.Name,
				Key:      p.RemovalKey(),
				Label:    label,
				Prompt:   roster.RemovalPrompt(label, a.Name),
			},
		})
	}
	return c
}
