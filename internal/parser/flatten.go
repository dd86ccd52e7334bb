package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Flattener renders parsed JSON into path-prefixed text lines suitable
// for embedding. Leaves pass through a relevance policy that keeps
// human-readable strings and drops machine noise.
//
// Flattening the same input twice yields identical lines in identical
// order: objects are walked in document key order, which is why
// decoding goes through the token stream instead of a map.
type Flattener struct{}

// NewFlattener creates a flattener with the default field policy.
func NewFlattener() *Flattener {
	return &Flattener{}
}

// FlattenDocument renders one whole JSON document.
//
// An object root produces unprefixed "field: value" lines. An array
// root produces "[i].field: value" lines, one flatten pass per
// element, using the same indexing rule as FlattenLines. A bare
// string root is emitted as-is; other primitive roots produce
// nothing.
func (f *Flattener) FlattenDocument(content []byte) string {
	value, err := decodeOrdered(content)
	if err != nil {
		return ""
	}

	var lines []string
	switch value.kind {
	case kindObject:
		f.flattenInto(&lines, value, "")
	case kindArray:
		for i, element := range value.arr {
			f.flattenInto(&lines, element, "["+strconv.Itoa(i)+"]")
		}
	case kindString:
		lines = append(lines, value.str)
	}
	return strings.Join(lines, "\n")
}

// FlattenLines renders line-delimited JSON (JSONL/NDJSON).
//
// Blank lines are skipped without affecting any counter. Lines that
// fail to parse are skipped silently: a single corrupt record never
// aborts the batch. The index prefix counts only successfully parsed,
// non-blank lines, so indices are always contiguous from zero
// regardless of where the bad lines sit.
//
// Zero valid lines is success with empty output, not an error.
func (f *Flattener) FlattenLines(content []byte) string {
	var lines []string
	outputIndex := 0

	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		value, err := decodeOrdered([]byte(trimmed))
		if err != nil {
			continue
		}
		f.flattenInto(&lines, value, "["+strconv.Itoa(outputIndex)+"]")
		outputIndex++
	}
	return strings.Join(lines, "\n")
}

// flattenInto walks value depth-first, appending "path: value" lines
// for every leaf the policy keeps.
func (f *Flattener) flattenInto(out *[]string, value jsonValue, prefix string) {
	switch value.kind {
	case kindObject:
		for _, member := range value.obj {
			f.flattenInto(out, member.val, childPath(prefix, member.key))
		}
	case kindArray:
		if deniedKey(leafKey(prefix)) {
			return
		}
		if joined := joinArray(value); joined != "" {
			*out = append(*out, prefix+": "+joined)
		}
	case kindString:
		if keepLeaf(leafKey(prefix), value) {
			*out = append(*out, prefix+": "+value.str)
		}
	}
	// Numbers, booleans and nulls never survive: they feed an
	// embedding index where they add noise, not semantic signal.
}

// joinArray renders an array value as one comma-joined string at its
// parent path. String elements pass through; nested objects and
// arrays fall back to a compact JSON rendering (their flattening rule
// below the top level is unspecified, so stringifying is the safe
// choice); numeric and boolean elements are dropped like any other
// non-string leaf.
func joinArray(value jsonValue) string {
	var parts []string
	for _, element := range value.arr {
		switch element.kind {
		case kindString:
			parts = append(parts, element.str)
		case kindObject, kindArray:
			parts = append(parts, compactJSON(element))
		}
	}
	return strings.Join(parts, ", ")
}

// childPath joins a key onto the accumulated path.
func childPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// leafKey returns the final segment of a flattened path, the part the
// field policy matches against.
func leafKey(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Field policy: which leaves are worth embedding.
//
// Only string values are candidates; numbers and booleans are always
// dropped. String values are then dropped when their key names mark
// them as identifiers, durations, timestamps or flags.
var deniedKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(^|_)(id|ids|uuid|guid)$`),
	regexp.MustCompile(`[a-z0-9]I[Dd]s?$`),
	regexp.MustCompile(`(?i)(_ms|_millis|_milliseconds|_ns|_us|_secs?|_seconds)$`),
	regexp.MustCompile(`(?i)^duration|duration$`),
	regexp.MustCompile(`(?i)(_at|_on|_time|_date)$`),
	regexp.MustCompile(`(?i)^(timestamp|date|time|datetime|created|updated|modified|expires|mtime|ctime)$`),
	regexp.MustCompile(`(?i)^(is|has|can|should|was|will)_`),
	regexp.MustCompile(`(?i)^(active|enabled|disabled|flag|deleted|archived|hidden|visible)$`),
}

// keepLeaf reports whether a primitive leaf survives the policy. The
// decision depends only on the value's type and the key's name, never
// on prior calls.
func keepLeaf(key string, value jsonValue) bool {
	if value.kind != kindString {
		return false
	}
	return !deniedKey(key)
}

// deniedKey reports whether a key name matches any excluded pattern.
func deniedKey(key string) bool {
	for _, pattern := range deniedKeyPatterns {
		if pattern.MatchString(key) {
			return true
		}
	}
	return false
}

// jsonKind enumerates the decoded JSON value types.
type jsonKind int

const (
	kindNull jsonKind = iota
	kindString
	kindNumber
	kindBool
	kindArray
	kindObject
)

// jsonValue is one decoded JSON value with object key order
// preserved. encoding/json maps randomise iteration order, which
// would break deterministic output, so decoding walks the token
// stream instead.
type jsonValue struct {
	kind    jsonKind
	str     string
	num     json.Number
	boolean bool
	arr     []jsonValue
	obj     []jsonMember
}

// jsonMember is one object entry in document order.
type jsonMember struct {
	key string
	val jsonValue
}

// decodeOrdered parses data as exactly one JSON value, rejecting
// trailing content.
func decodeOrdered(data []byte) (jsonValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	value, err := decodeValue(dec)
	if err != nil {
		return jsonValue{}, err
	}
	if dec.More() {
		return jsonValue{}, fmt.Errorf("trailing content after JSON value")
	}
	return value, nil
}

// decodeValue consumes one complete value from the token stream.
func decodeValue(dec *json.Decoder) (jsonValue, error) {
	tok, err := dec.Token()
	if err != nil {
		return jsonValue{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return jsonValue{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return jsonValue{kind: kindString, str: t}, nil
	case json.Number:
		return jsonValue{kind: kindNumber, num: t}, nil
	case bool:
		return jsonValue{kind: kindBool, boolean: t}, nil
	case nil:
		return jsonValue{kind: kindNull}, nil
	default:
		return jsonValue{}, fmt.Errorf("unexpected token %v", tok)
	}
}

// decodeObject consumes members until the closing brace, preserving
// their order.
func decodeObject(dec *json.Decoder) (jsonValue, error) {
	value := jsonValue{kind: kindObject}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return jsonValue{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return jsonValue{}, fmt.Errorf("object key %v is not a string", keyTok)
		}
		member, err := decodeValue(dec)
		if err != nil {
			return jsonValue{}, err
		}
		value.obj = append(value.obj, jsonMember{key: key, val: member})
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return jsonValue{}, err
	}
	return value, nil
}

// decodeArray consumes elements until the closing bracket.
func decodeArray(dec *json.Decoder) (jsonValue, error) {
	value := jsonValue{kind: kindArray}
	for dec.More() {
		element, err := decodeValue(dec)
		if err != nil {
			return jsonValue{}, err
		}
		value.arr = append(value.arr, element)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return jsonValue{}, err
	}
	return value, nil
}

// compactJSON re-renders a decoded value as minimal JSON text.
func compactJSON(value jsonValue) string {
	var sb strings.Builder
	writeCompact(&sb, value)
	return sb.String()
}

func writeCompact(sb *strings.Builder, value jsonValue) {
	switch value.kind {
	case kindNull:
		sb.WriteString("null")
	case kindString:
		encoded, _ := json.Marshal(value.str)
		sb.Write(encoded)
	case kindNumber:
		sb.WriteString(value.num.String())
	case kindBool:
		sb.WriteString(strconv.FormatBool(value.boolean))
	case kindArray:
		sb.WriteByte('[')
		for i, element := range value.arr {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeCompact(sb, element)
		}
		sb.WriteByte(']')
	case kindObject:
		sb.WriteByte('{')
		for i, member := range value.obj {
			if i > 0 {
				sb.WriteByte(',')
			}
			encoded, _ := json.Marshal(member.key)
			sb.Write(encoded)
			sb.WriteByte(':')
			writeCompact(sb, member.val)
		}
		sb.WriteByte('}')
	}
}
