package parser

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mcncl/jsongraph/internal/models"
)

// TOMLDecoder decodes TOML documents with BurntSushi/toml.
// Table members are ordered the way their keys appear in the document.
type TOMLDecoder struct{}

// keySep joins key paths for the order index; it cannot appear in a TOML key.
const keySep = "\x00"

// TryDecode implements Decoder.
func (TOMLDecoder) TryDecode(text string) (models.JSONValue, *Failure) {
	var raw map[string]any
	meta, err := toml.Decode(text, &raw)
	if err != nil {
		var parseError toml.ParseError
		if stderrors.As(err, &parseError) {
			failure := &Failure{Message: parseError.Error()}
			// Start is only trustworthy once the lexer has moved past the first line.
			if parseError.Position.Start > 0 || parseError.Position.Line <= 1 {
				failure.Offset = max(0, min(parseError.Position.Start, len(text)))
				failure.HasOffset = true
			}
			return nil, failure
		}
		return nil, &Failure{Message: err.Error()}
	}

	order := make(map[string]int)
	for i, key := range meta.Keys() {
		joined := strings.Join(key, keySep)
		if _, seen := order[joined]; !seen {
			order[joined] = i
		}
	}

	return convertTOML(raw, nil, order), nil
}

func convertTOML(value any, path []string, order map[string]int) models.JSONValue {
	switch v := value.(type) {
	case map[string]any:
		return convertTOMLTable(v, path, order)
	case []map[string]any:
		arr := make(models.JSONArray, len(v))
		for i, table := range v {
			arr[i] = convertTOMLTable(table, path, order)
		}
		return arr
	case []any:
		arr := make(models.JSONArray, len(v))
		for i, item := range v {
			arr[i] = convertTOML(item, path, order)
		}
		return arr
	case int64:
		return json.Number(strconv.FormatInt(v, 10))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
		return json.Number(strconv.FormatFloat(v, 'g', -1, 64))
	case bool, string:
		return v
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case nil:
		return nil
	default:
		return fmt.Sprint(v)
	}
}

func convertTOMLTable(table map[string]any, path []string, order map[string]int) models.JSONObject {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}

	position := func(key string) int {
		full := append(append([]string{}, path...), key)
		if i, ok := order[strings.Join(full, keySep)]; ok {
			return i
		}
		return math.MaxInt
	}
	sort.SliceStable(keys, func(i, j int) bool {
		pi, pj := position(keys[i]), position(keys[j])
		if pi != pj {
			return pi < pj
		}
		return keys[i] < keys[j]
	})

	obj := make(models.JSONObject, 0, len(keys))
	for _, key := range keys {
		childPath := append(append([]string{}, path...), key)
		obj = append(obj, models.Member{Key: key, Value: convertTOML(table[key], childPath, order)})
	}
	return obj
}
