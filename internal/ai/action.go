package ai

import (
	"encoding/json"
	"strconv"
)

// Action is the transport-neutral form of one tool invocation. Both decoders
// (native tool calls and embedded <<ACTION: …>> tags) produce this shape; the
// execution engine never learns which transport an action arrived on.
type Action struct {
	Tool string
	Args map[string]any
}

// Int coerces an argument to int. JSON numbers arrive as float64; models
// occasionally quote numbers, so numeric strings are accepted too.
func (a Action) Int(key string) (int, bool) {
	v, ok := a.Args[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

func (a Action) Str(key string) string {
	if v, ok := a.Args[key].(string); ok {
		return v
	}
	return ""
}

// MarshalJSON flattens to the wire form the client protocol uses:
// {"tool": name, ...arguments}.
func (a Action) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(a.Args)+1)
	for k, v := range a.Args {
		m[k] = v
	}
	m["tool"] = a.Tool
	return json.Marshal(m)
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	tool, _ := m["tool"].(string)
	delete(m, "tool")
	a.Tool = tool
	a.Args = m
	return nil
}
