package store

import (
	"sort"
	"strings"
)

type Column struct {
	Name string
}

// Cell is the typed value union used by the store's columnar wire format.
// Exactly one of the typed fields is expected to be set; value kinds this
// adapter does not model land in Other keyed by their wire field name.
type Cell struct {
	TextValue   *string
	Int64Value  *int64
	Uint64Value *uint64
	BoolValue   *bool
	BytesValue  []byte
	DoubleValue *float64
	FloatValue  *float32
	NullFlag    bool
	Other       map[string]any
}

type Row struct {
	Items []Cell
}

type ResultSet struct {
	Columns []Column
	Rows    []Row
}

// FormatRow turns one wire row into a {field: value} record. Byte-string
// values are exposed as strings because every column this service stores is
// utf8. An unrecognized value kind falls back to the first extra field whose
// name ends in "Value", or nil.
func FormatRow(row Row, columns []Column) map[string]any {
	obj := map[string]any{}
	if len(row.Items) == 0 || len(columns) == 0 {
		return obj
	}
	for i, item := range row.Items {
		if i >= len(columns) {
			break
		}
		obj[columns[i].Name] = cellValue(item)
	}
	return obj
}

func cellValue(item Cell) any {
	switch {
	case item.TextValue != nil:
		return *item.TextValue
	case item.Int64Value != nil:
		return *item.Int64Value
	case item.Uint64Value != nil:
		return *item.Uint64Value
	case item.BoolValue != nil:
		return *item.BoolValue
	case item.BytesValue != nil:
		return string(item.BytesValue)
	case item.DoubleValue != nil:
		return *item.DoubleValue
	case item.FloatValue != nil:
		return float64(*item.FloatValue)
	case item.NullFlag:
		return nil
	}
	keys := make([]string, 0, len(item.Other))
	for k := range item.Other {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.HasSuffix(k, "Value") {
			return item.Other[k]
		}
	}
	return nil
}

func TextCell(s string) Cell {
	return Cell{TextValue: &s}
}

func NullCell() Cell {
	return Cell{NullFlag: true}
}
