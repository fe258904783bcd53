package jsonorder

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// NewObject returns an empty object.
func NewObject() *Value {
	return &Value{Kind: Object}
}

// NewArray returns an empty array.
func NewArray() *Value {
	return &Value{Kind: Array}
}

// StringValue returns a string value.
func StringValue(s string) *Value {
	return &Value{Kind: String, String: s}
}

// BoolValue returns a boolean value.
func BoolValue(b bool) *Value {
	return &Value{Kind: Bool, Bool: b}
}

// IntValue returns a number value.
func IntValue(n int) *Value {
	return &Value{Kind: Number, Number: json.Number(strconv.Itoa(n))}
}

// StringArray returns an array of strings.
func StringArray(items []string) *Value {
	arr := NewArray()
	for _, s := range items {
		arr.Items = append(arr.Items, StringValue(s))
	}
	return arr
}

// Set appends a member. Keys are not deduplicated.
func (v *Value) Set(key string, value *Value) *Value {
	v.Members = append(v.Members, Member{Key: key, Value: value})
	return v
}

// Append adds an item to an array.
func (v *Value) Append(item *Value) *Value {
	v.Items = append(v.Items, item)
	return v
}

// Encode writes v as indented JSON, members in stored order. Empty objects
// and arrays are written as {} and [].
func Encode(w io.Writer, v *Value, indent string) error {
	bw := bufio.NewWriter(w)
	e := encoder{w: bw, indent: indent}
	e.value(v, 0)
	if e.err != nil {
		return e.err
	}
	return bw.Flush()
}

type encoder struct {
	w      *bufio.Writer
	indent string
	err    error
}

func (e *encoder) write(s string) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(s)
}

func (e *encoder) newline(depth int) {
	e.write("\n")
	e.write(strings.Repeat(e.indent, depth))
}

func (e *encoder) value(v *Value, depth int) {
	if v == nil {
		e.write("null")
		return
	}
	switch v.Kind {
	case Bool:
		e.write(strconv.FormatBool(v.Bool))
	case Number:
		e.write(v.Number.String())
	case String:
		e.write(quote(v.String))
	case Array:
		if len(v.Items) == 0 {
			e.write("[]")
			return
		}
		e.write("[")
		for i, item := range v.Items {
			if i > 0 {
				e.write(",")
			}
			e.newline(depth + 1)
			e.value(item, depth+1)
		}
		e.newline(depth)
		e.write("]")
	case Object:
		if len(v.Members) == 0 {
			e.write("{}")
			return
		}
		e.write("{")
		for i, m := range v.Members {
			if i > 0 {
				e.write(",")
			}
			e.newline(depth + 1)
			e.write(quote(m.Key))
			e.write(": ")
			e.value(m.Value, depth+1)
		}
		e.newline(depth)
		e.write("}")
	default:
		e.write("null")
	}
}

func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
