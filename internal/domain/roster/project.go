package roster

import (
	"math"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Project derives the display-ready Activity from one raw record.
// PRE: raw may be any JSON value; non-objects are treated as an empty record
// POST: Missing or falsy fields carry their placeholders; Participants is non-nil
func Project(name string, raw gjson.Result) Activity {
	a := Activity{
		Name:         name,
		Description:  DefaultDescription,
		Schedule:     DefaultSchedule,
		Participants: []Participant{},
	}
	if !raw.IsObject() {
		return a
	}

	if s, ok := truthyText(raw.Get("description")); ok {
		a.Description = s
	}
	if s, ok := truthyText(raw.Get("schedule")); ok {
		a.Schedule = s
	}
	a.MaxParticipants = capacity(raw.Get("max_participants"))

	if ps := raw.Get("participants"); ps.IsArray() {
		ps.ForEach(func(_, p gjson.Result) bool {
			a.Participants = append(a.Participants, parseParticipant(p))
			return true
		})
	}
	return a
}

// capacity returns the numeric value of v when it is finite, else 0.
func capacity(v gjson.Result) float64 {
	if v.Type != gjson.Number || math.IsInf(v.Num, 0) || math.IsNaN(v.Num) {
		return 0
	}
	return v.Num
}

func parseParticipant(v gjson.Result) Participant {
	if v.IsObject() || v.IsArray() {
		p := Participant{
			Structured: true,
			Fallback:   string(pretty.Ugly([]byte(v.Raw))),
		}
		if v.IsObject() {
			p.Name, _ = truthyText(v.Get("name"))
			p.Email, _ = truthyText(v.Get("email"))
		}
		return p
	}
	return Participant{Fallback: bareText(v)}
}

// bareText is the string form of a scalar participant value.
func bareText(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return "null"
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	case gjson.Number:
		return formatNumber(v.Num)
	}
	return v.Str
}
