package format

import (
	"io"
	"strings"

	"conf_surgeon/value"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
)

// parseJSON returns value tree strictly parsed from <text>, rejecting comments, trailing commas and trailing garbage
func parseJSON(text string) (value.Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, errors.Wrap(err, "Parse JSON")
	}
	if _, err = dec.Token(); err != io.EOF {
		return nil, errors.New("Parse JSON: unexpected trailing content")
	}
	return v, nil
}

// decodeJSONValue returns the next complete value from <dec>
func decodeJSONValue(dec *json.Decoder) (value.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeJSONToken(dec, tok)
}

// decodeJSONToken returns value started by already consumed <tok>, reading nested content from <dec>
func decodeJSONToken(dec *json.Decoder, tok json.Token) (value.Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			out := value.Map{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, errors.Errorf("Object key is not a string: %v", keyTok)
				}
				child, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				out = out.With(key, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return out, nil
		case '[':
			out := value.List{}
			for dec.More() {
				child, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return out, nil
		}
		return nil, errors.Errorf("Unexpected delimiter: %v", t)
	case string:
		return value.String(t), nil
	case json.Number:
		return value.Number(t.String()), nil
	case bool:
		return value.Bool(t), nil
	case nil:
		return value.Null{}, nil
	}
	return nil, errors.Errorf("Unexpected token: %v", tok)
}

// serializeJSON returns <v> pretty-printed with 2 space indent and stable key order
func serializeJSON(v value.Value) string {
	return RenderJSON(v, "")
}

// RenderJSON returns <v> pretty-printed with 2 space steps, prefixing continuation lines with <indent> so the
// result can be spliced into existing text at that indentation
func RenderJSON(v value.Value, indent string) string {
	var sb strings.Builder
	writeJSONValue(&sb, v, indent)
	return sb.String()
}

// writeJSONValue appends <v> to <sb>, prefixing nested lines with <indent>
func writeJSONValue(sb *strings.Builder, v value.Value, indent string) {
	switch t := v.(type) {
	case nil, value.Null:
		sb.WriteString("null")
	case value.Bool:
		if t {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case value.Number:
		sb.WriteString(string(t))
	case value.String:
		sb.WriteString(QuoteJSONString(string(t)))
	case value.List:
		if len(t) == 0 {
			sb.WriteString("[]")
			return
		}
		sb.WriteString("[\n")
		for i, item := range t {
			sb.WriteString(indent + "  ")
			writeJSONValue(sb, item, indent+"  ")
			if i < len(t)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		sb.WriteString(indent + "]")
	case value.Map:
		if len(t) == 0 {
			sb.WriteString("{}")
			return
		}
		sb.WriteString("{\n")
		for i, field := range t {
			sb.WriteString(indent + "  " + QuoteJSONString(field.Key) + ": ")
			writeJSONValue(sb, field.Value, indent+"  ")
			if i < len(t)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		sb.WriteString(indent + "}")
	}
}

// QuoteJSONString returns <s> as a double-quoted JSON string literal
func QuoteJSONString(s string) string {
	out, err := json.Marshal(s)
	if err != nil {
		// Marshalling a plain string can not fail
		return `"` + s + `"`
	}
	return string(out)
}
