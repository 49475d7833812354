package feeds

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FlexString decodes a JSON string, number or boolean into its string form.
// Null decodes to "".
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(string(data))
	return nil
}

func (f FlexString) String() string {
	return strings.TrimSpace(string(f))
}

// FlexBool decodes true/false, 0/1 and their string forms.
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(data []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	switch strings.ToLower(s.String()) {
	case "", "0", "f", "false", "no", "off":
		*f = false
	default:
		*f = true
	}
	return nil
}
