package roster

import (
	"fmt"
	"math"
	"strconv"

	"github.com/tidwall/gjson"
)

// Directory is the canonical ordered mapping of activity name to raw activity record.
// Keys are unique; iteration order is the order in which each key was first inserted.
type Directory struct {
	keys   []string
	values map[string]gjson.Result
}

// Len returns the number of activities in the directory.
func (d Directory) Len() int {
	return len(d.keys)
}

// Keys returns activity names in directory order.
func (d Directory) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Get returns the raw record stored under name.
func (d Directory) Get(name string) (gjson.Result, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Activities projects every record in directory order.
// PRE: none
// POST: len(result) == d.Len(); result[i].Name == d.Keys()[i]
func (d Directory) Activities() []Activity {
	out := make([]Activity, 0, len(d.keys))
	for _, k := range d.keys {
		out = append(out, Project(k, d.values[k]))
	}
	return out
}

// set inserts or overwrites a record. An overwritten key keeps its original position.
func (d *Directory) set(key string, v gjson.Result) {
	if d.values == nil {
		d.values = make(map[string]gjson.Result)
	}
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Normalize turns an activities response body into a Directory.
// PRE: none; payload may be any byte sequence
// POST: Array payloads are keyed by name, then title, then "Activity <i+1>";
// object payloads are taken as-is in document key order; anything else yields
// an empty Directory. Duplicate keys keep the last value.
// INVARIANT: never panics and never fails
func Normalize(payload []byte) Directory {
	var d Directory
	if !gjson.ValidBytes(payload) {
		return d
	}
	root := gjson.ParseBytes(payload)
	switch {
	case root.IsArray():
		idx := 0
		root.ForEach(func(_, item gjson.Result) bool {
			d.set(activityKey(item, idx), item)
			idx++
			return true
		})
	case root.IsObject():
		root.ForEach(func(k, v gjson.Result) bool {
			d.set(k.String(), v)
			return true
		})
	}
	return d
}

// activityKey resolves the key of the idx-th element of an array payload.
func activityKey(item gjson.Result, idx int) string {
	if item.IsObject() {
		if s, ok := truthyText(item.Get("name")); ok {
			return s
		}
		if s, ok := truthyText(item.Get("title")); ok {
			return s
		}
	}
	return fmt.Sprintf("Activity %d", idx+1)
}

// truthyText returns the text form of a scalar that counts as present:
// a non-empty string, a non-zero number or true. Objects and arrays never do.
func truthyText(r gjson.Result) (string, bool) {
	switch r.Type {
	case gjson.String:
		return r.Str, r.Str != ""
	case gjson.Number:
		if r.Num == 0 || math.IsNaN(r.Num) {
			return "", false
		}
		return formatNumber(r.Num), true
	case gjson.True:
		return "true", true
	}
	return "", false
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
