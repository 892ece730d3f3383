package inspection

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// ErrItemsNotList is returned when the items payload is not a list.
var ErrItemsNotList = errors.New("items must be a list")

// Normalize maps a raw item in any of its source shapes onto the canonical
// record. It never fails: nil and non-object inputs produce an empty item.
func Normalize(raw any) Item {
	switch v := raw.(type) {
	case Item:
		return v
	case *Item:
		if v == nil {
			return Item{}
		}
		return *v
	}

	obj, ok := asObject(raw)
	if !ok {
		return Item{}
	}

	var it Item
	for _, f := range fields {
		f.set(&it, resolve(obj, f.Key))
	}
	return it
}

// ParseItem normalizes raw, first decoding it when it is still encoded JSON
// ([]byte or json.RawMessage). Decoding is the only way it can fail.
func ParseItem(raw any) (Item, error) {
	var data []byte
	switch v := raw.(type) {
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	default:
		return Normalize(raw), nil
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return Item{}, fmt.Errorf("decode item: %w", err)
	}
	return Normalize(decoded), nil
}

// Items returns the elements of a raw items payload: any slice or array,
// or encoded JSON holding an array. Elements are handed back untouched;
// callers run ParseItem on each.
func Items(raw any) ([]any, error) {
	switch v := raw.(type) {
	case []any:
		return v, nil
	case []byte:
		return Items(json.RawMessage(v))
	case json.RawMessage:
		var elems []json.RawMessage
		if err := json.Unmarshal(v, &elems); err != nil {
			return nil, ErrItemsNotList
		}
		if elems == nil {
			// JSON null
			return nil, ErrItemsNotList
		}
		return Items(elems)
	}

	rv := reflect.ValueOf(raw)
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return nil, ErrItemsNotList
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

var headerResolution = map[string][]Accessor{
	"client": {
		{Path: []string{"client"}},
		{Path: []string{"Client"}},
		{Path: []string{"clientName"}},
	},
	"inspectionDate": {
		{Path: []string{"inspectionDate"}},
		{Path: []string{"InspectionDate"}},
		{Path: []string{"date"}},
	},
}

func resolveHeader(obj map[string]any, key string) string {
	for _, acc := range headerResolution[key] {
		if v, ok := acc.Lookup(obj); ok {
			return v
		}
	}
	return ""
}

// NormalizeHeader maps a raw header onto Header. ok is false when raw is
// nil or not an object.
func NormalizeHeader(raw any) (*Header, bool) {
	switch v := raw.(type) {
	case Header:
		return &v, true
	case *Header:
		return v, v != nil
	}
	obj, ok := asObject(raw)
	if !ok {
		return nil, false
	}
	return &Header{
		Client:         resolveHeader(obj, "client"),
		InspectionDate: resolveHeader(obj, "inspectionDate"),
	}, true
}
