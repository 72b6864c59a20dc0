// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package setting models typed, optionally localized key/value attributes stored
in (owner id, name, locale, value, type) tables such as user_group_settings.

Values carry an explicit [Type]; [Value.Encode] and [Decode] convert to and from
the text column without guessing.
*/
package setting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Type is the persisted setting_type column.
type Type string

const (
	TypeString Type = "string"
	TypeInt    Type = "int"
	TypeBool   Type = "bool"
	TypeFloat  Type = "float"
	TypeObject Type = "object"
)

// Value is a tagged union over the supported setting types. The zero Value is unset.
type Value struct {
	kind Type
	s    string
	i    int64
	b    bool
	f    float64
	obj  json.RawMessage
}

// String builds a string value.
func String(s string) Value { return Value{kind: TypeString, s: s} }

// Int builds an integer value.
func Int(i int64) Value { return Value{kind: TypeInt, i: i} }

// Bool builds a boolean value.
func Bool(b bool) Value { return Value{kind: TypeBool, b: b} }

// Float builds a floating point value.
func Float(f float64) Value { return Value{kind: TypeFloat, f: f} }

// Object builds an object value from any JSON-encodable v.
func Object(v any) (Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("setting: encode object: %w", err)
	}
	return Value{kind: TypeObject, obj: raw}, nil
}

// Type returns the value's type, or "" when unset.
func (v Value) Type() Type { return v.kind }

// Empty reports whether the value is unset, an empty string, or a null object.
// Localized writes skip empty values.
func (v Value) Empty() bool {
	switch v.kind {
	case "":
		return true
	case TypeString:
		return v.s == ""
	case TypeObject:
		return len(v.obj) == 0 || bytes.Equal(v.obj, []byte("null"))
	default:
		return false
	}
}

// Text returns a display form of the value. Strings are returned as-is.
func (v Value) Text() string {
	switch v.kind {
	case TypeString:
		return v.s
	case TypeInt:
		return strconv.FormatInt(v.i, 10)
	case TypeBool:
		return strconv.FormatBool(v.b)
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TypeObject:
		return string(v.obj)
	default:
		return ""
	}
}

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == TypeInt }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == TypeBool }

// AsFloat returns the float payload.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == TypeFloat }

// DecodeObject unmarshals an object value into target.
func (v Value) DecodeObject(target any) error {
	if v.kind != TypeObject {
		return fmt.Errorf("setting: value is %q, not object", v.kind)
	}
	return json.Unmarshal(v.obj, target)
}

// # Persistence Codec

// Encode renders the value for the setting_value column.
func (v Value) Encode() (string, Type, error) {
	switch v.kind {
	case TypeString, TypeInt, TypeFloat, TypeObject:
		return v.Text(), v.kind, nil
	case TypeBool:
		if v.b {
			return "1", TypeBool, nil
		}
		return "0", TypeBool, nil
	default:
		return "", "", fmt.Errorf("setting: cannot encode unset value")
	}
}

// Decode parses a stored setting_value according to its setting_type.
// Rows with an empty type are read as strings.
func Decode(raw string, kind Type) (Value, error) {
	switch kind {
	case TypeString, "":
		return String(raw), nil
	case TypeInt:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("setting: decode int %q: %w", raw, err)
		}
		return Int(i), nil
	case TypeBool:
		switch raw {
		case "1", "true":
			return Bool(true), nil
		case "0", "false", "":
			return Bool(false), nil
		}
		return Value{}, fmt.Errorf("setting: decode bool %q", raw)
	case TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, fmt.Errorf("setting: decode float %q: %w", raw, err)
		}
		return Float(f), nil
	case TypeObject:
		if !json.Valid([]byte(raw)) {
			return Value{}, fmt.Errorf("setting: decode object: invalid JSON")
		}
		return Value{kind: TypeObject, obj: json.RawMessage(raw)}, nil
	default:
		return Value{}, fmt.Errorf("setting: unknown type %q", kind)
	}
}

// # JSON

// MarshalJSON renders the value as its native JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case TypeString:
		return json.Marshal(v.s)
	case TypeInt:
		return json.Marshal(v.i)
	case TypeBool:
		return json.Marshal(v.b)
	case TypeFloat:
		return json.Marshal(v.f)
	case TypeObject:
		return v.obj, nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON infers the type from the JSON token: strings, booleans,
// integral numbers, other numbers, and objects or arrays.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = Value{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = String(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case '{', '[':
		*v = Value{kind: TypeObject, obj: append(json.RawMessage(nil), trimmed...)}
	default:
		if i, err := strconv.ParseInt(string(trimmed), 10, 64); err == nil {
			*v = Int(i)
			return nil
		}
		f, err := strconv.ParseFloat(string(trimmed), 64)
		if err != nil {
			return fmt.Errorf("setting: unsupported JSON value %s", trimmed)
		}
		*v = Float(f)
	}
	return nil
}
