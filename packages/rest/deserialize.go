package rest

import (
	"encoding/json"
	"encoding/xml"

	"github.com/mitchellh/mapstructure"
)

// Deserialize parses resp's content as JSON into out, which must be a
// pointer to the target shape.
//
// The tolerance contract is deliberate, not an accident of the decoder:
// fields absent from the payload keep their defaults, fields present in the
// payload but absent from out are dropped, and an explicit null means "not
// provided". Only malformed syntax fails, with a *DeserializationError
// carrying the raw content. The decode happens in two stages: a strict
// syntax parse into loosely-typed values, then a weak, tag-aware mapping
// into out.
func Deserialize(resp *Response, out any) error {
	if resp == nil || len(resp.RawBody) == 0 {
		return nil
	}

	var raw any
	if err := json.Unmarshal(resp.RawBody, &raw); err != nil {
		return &DeserializationError{Content: resp.Content, Err: err}
	}

	raw = pruneNulls(raw)
	if raw == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return &DeserializationError{Content: resp.Content, Err: err}
	}
	if err := decoder.Decode(raw); err != nil {
		return &DeserializationError{Content: resp.Content, Err: err}
	}
	return nil
}

// DeserializeXML parses resp's content as XML into out. encoding/xml is
// already tolerant of unknown and missing elements; malformed documents fail
// with a *DeserializationError.
func DeserializeXML(resp *Response, out any) error {
	if resp == nil || len(resp.RawBody) == 0 {
		return nil
	}
	if err := xml.Unmarshal(resp.RawBody, out); err != nil {
		return &DeserializationError{Content: resp.Content, Err: err}
	}
	return nil
}

// pruneNulls removes explicit nulls so they read as absent fields. Nested
// objects and arrays are walked; null array elements are kept as zero slots
// by the mapping stage, so only object members are dropped here.
func pruneNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if val == nil {
				delete(t, k)
				continue
			}
			t[k] = pruneNulls(val)
		}
		return t
	case []any:
		for i, val := range t {
			if val != nil {
				t[i] = pruneNulls(val)
			}
		}
		return t
	default:
		return v
	}
}
