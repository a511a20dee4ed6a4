package config

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Kind is the type of a checker parameter.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt
	KindString
	KindStringList
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindStringList:
		return "string-list"
	}
	return "unknown"
}

// Value is a typed parameter value. Only the field matching Kind is meaningful.
type Value struct {
	Kind Kind
	Bool bool
	Int  int64
	Str  string
	List []string
}

func Bool(v bool) Value { return Value{Kind: KindBool, Bool: v} }
func Int(v int64) Value { return Value{Kind: KindInt, Int: v} }
func String(v string) Value { return Value{Kind: KindString, Str: v} }
func Strings(v ...string) Value { return Value{Kind: KindStringList, List: append([]string(nil), v...)} }

func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindString:
		return strconv.Quote(v.Str)
	case KindStringList:
		quoted := make([]string, len(v.List))
		for i, s := range v.List {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	}
	return "<invalid>"
}

func (v Value) clone() Value {
	if v.List != nil {
		v.List = append([]string(nil), v.List...)
	}
	return v
}

// Coerce converts a decoded TOML value (or a CLI string) to kind.
func Coerce(kind Kind, raw any) (Value, error) {
	switch kind {
	case KindBool:
		switch x := raw.(type) {
		case bool:
			return Bool(x), nil
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				return Value{}, fmt.Errorf("%w: want bool, got %q", ErrParamType, x)
			}
			return Bool(b), nil
		}
	case KindInt:
		switch x := raw.(type) {
		case int64:
			return Int(x), nil
		case int:
			n, err := safecast.Conv[int64](x)
			if err != nil {
				return Value{}, fmt.Errorf("%w: %w", ErrParamType, err)
			}
			return Int(n), nil
		case string:
			n, err := strconv.ParseInt(x, 10, 64)
			if err != nil {
				return Value{}, fmt.Errorf("%w: want int, got %q", ErrParamType, x)
			}
			return Int(n), nil
		}
	case KindString:
		if s, ok := raw.(string); ok {
			return String(s), nil
		}
	case KindStringList:
		switch x := raw.(type) {
		case []string:
			return Strings(x...), nil
		case []any:
			out := make([]string, 0, len(x))
			for _, item := range x {
				s, ok := item.(string)
				if !ok {
					return Value{}, fmt.Errorf("%w: list item %v is not a string", ErrParamType, item)
				}
				out = append(out, s)
			}
			return Strings(out...), nil
		case string:
			if strings.TrimSpace(x) == "" {
				return Strings(), nil
			}
			parts := strings.Split(x, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return Strings(parts...), nil
		}
	}
	return Value{}, fmt.Errorf("%w: want %s, got %T", ErrParamType, kind, raw)
}
