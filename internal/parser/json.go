package parser

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/mcncl/jsongraph/internal/models"
)

// JSONDecoder decodes JSON text with encoding/json.
// Numbers are kept as json.Number and object members keep document order.
type JSONDecoder struct{}

// TryDecode implements Decoder.
func (JSONDecoder) TryDecode(text string) (models.JSONValue, *Failure) {
	data := []byte(text)

	// Unmarshal runs the full scanner over data before anything else, so every
	// syntax problem (trailing data included) surfaces here as a *json.SyntaxError.
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, jsonFailure(err, len(data))
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	value, err := decodeJSONValue(decoder)
	if err != nil {
		return nil, jsonFailure(err, len(data))
	}
	return value, nil
}

// jsonFailure converts a decode error into a Failure. encoding/json reports the
// offset just past the offending byte, except at end of input where it is the length.
func jsonFailure(err error, length int) *Failure {
	var syntaxError *json.SyntaxError
	if !stderrors.As(err, &syntaxError) {
		return &Failure{Message: err.Error()}
	}

	offset := int(syntaxError.Offset)
	if !strings.HasPrefix(syntaxError.Error(), "unexpected end") {
		offset--
	}
	offset = max(0, min(offset, length))

	return &Failure{
		Message:   syntaxError.Error(),
		Offset:    offset,
		HasOffset: true,
	}
}

func decodeJSONValue(decoder *json.Decoder) (models.JSONValue, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := token.(json.Delim)
	if !ok {
		// string, json.Number, bool or nil
		return token, nil
	}

	switch delim {
	case '{':
		return decodeJSONObject(decoder)
	case '[':
		return decodeJSONArray(decoder)
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

func decodeJSONObject(decoder *json.Decoder) (models.JSONValue, error) {
	obj := models.JSONObject{}
	index := make(map[string]int)

	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", token)
		}

		value, err := decodeJSONValue(decoder)
		if err != nil {
			return nil, err
		}

		// Duplicate keys keep the first position and the last value.
		if i, seen := index[key]; seen {
			obj[i].Value = value
			continue
		}
		index[key] = len(obj)
		obj = append(obj, models.Member{Key: key, Value: value})
	}

	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeJSONArray(decoder *json.Decoder) (models.JSONValue, error) {
	arr := models.JSONArray{}
	for decoder.More() {
		value, err := decodeJSONValue(decoder)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}

	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}
