package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Label is a display value that datasets publish inconsistently as a string,
// number or boolean. It always decodes to its textual form.
type Label string

// UnmarshalJSON accepts any JSON scalar. null decodes to the empty label.
func (l *Label) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*l = Label(s)
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	switch typed := v.(type) {
	case bool:
		*l = Label(strconv.FormatBool(typed))
	case float64:
		*l = Label(strconv.FormatFloat(typed, 'f', -1, 64))
	default:
		*l = Label(strings.TrimSpace(string(trimmed)))
	}
	return nil
}

func (l Label) String() string {
	return string(l)
}
