package postgres

import (
	"reflect"
	"sync"
)

// dbField is one tagged field, addressed by its index path so promoted
// fields of embedded structs resolve with FieldByIndex.
type dbField struct {
	column string
	index  []int
}

var fieldCache sync.Map // reflect.Type -> []dbField

func dbFields(t reflect.Type) []dbField {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]dbField)
	}
	fields := collectFields(t, nil)
	fieldCache.Store(t, fields)
	return fields
}

func collectFields(t reflect.Type, prefix []int) []dbField {
	var out []dbField
	for i := range t.NumField() {
		f := t.Field(i)
		path := append(append([]int(nil), prefix...), i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			out = append(out, collectFields(f.Type, path)...)
			continue
		}
		if tag := f.Tag.Get("db"); tag != "" && tag != "-" {
			out = append(out, dbField{column: tag, index: path})
		}
	}
	return out
}

func structType(t reflect.Type) (reflect.Type, bool) {
	if t == nil {
		return nil, false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t, t.Kind() == reflect.Struct
}

// ExtractDBColumns lists the "db" tags of T in field order, embedded
// structs inline. It feeds SELECT lists and COPY column lists.
func ExtractDBColumns[T any]() []string {
	t, ok := structType(reflect.TypeFor[T]())
	if !ok {
		return nil
	}
	fields := dbFields(t)
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.column
	}
	return cols
}

// StructToMap maps column to value for squirrel's SetMap.
// Non-struct values yield nil.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	fields := dbFields(rv.Type())
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.column] = rv.FieldByIndex(f.index).Interface()
	}
	return out
}
