package series

import "maps"

// Row is a loosely typed record, such as one decoded from a CSV or JSON source
// before it is mapped onto a concrete type.
type Row map[string]any

// RenameField moves the value of oldName to newName in every row. Rows without
// oldName are passed through unchanged.
func RenameField(s Linear[Row], oldName, newName string) Linear[Row] {
	return Map(s, func(r Row) Row {
		v, ok := r[oldName]
		if !ok || oldName == newName {
			return r
		}
		out := maps.Clone(r)
		delete(out, oldName)
		out[newName] = v
		return out
	})
}
