package vdom

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Listener is an event binding carried by a Delta.
type Listener struct {
	Event   string   // "click", "input", ...
	Handler *Handler // Bound callback
}

// Delta is the attribute change set between two prop maps, in the order a
// host applies it: detach, reset, set, attach.
type Delta struct {
	Detach []Listener // Listeners removed or replaced
	Reset  []string   // Plain attributes removed; reset to empty
	Set    []Attr     // Plain attributes added or changed
	Attach []Listener // Listeners added or replaced
}

// Empty reports whether the delta changes nothing.
func (d Delta) Empty() bool {
	return len(d.Detach) == 0 && len(d.Reset) == 0 && len(d.Set) == 0 && len(d.Attach) == 0
}

// Len returns the number of individual changes in the delta.
func (d Delta) Len() int {
	return len(d.Detach) + len(d.Reset) + len(d.Set) + len(d.Attach)
}

// DiffProps compares two prop maps. Event-style keys are compared by handler
// identity, plain keys by value; the children key is ignored.
func DiffProps(prev, next Props) Delta {
	var d Delta

	for _, key := range sortedKeys(prev) {
		if key == ChildrenKey {
			continue
		}
		prevVal := prev[key]
		nextVal, exists := next[key]

		if IsEventKey(key) {
			if h := handlerOf(prevVal); h != nil && (!exists || handlerOf(nextVal) != h) {
				d.Detach = append(d.Detach, Listener{Event: EventName(key), Handler: h})
			}
			continue
		}
		if !exists {
			d.Reset = append(d.Reset, key)
		}
	}

	for _, key := range sortedKeys(next) {
		if key == ChildrenKey {
			continue
		}
		nextVal := next[key]
		prevVal, exists := prev[key]

		if IsEventKey(key) {
			if h := handlerOf(nextVal); h != nil && (!exists || handlerOf(prevVal) != h) {
				d.Attach = append(d.Attach, Listener{Event: EventName(key), Handler: h})
			}
			continue
		}
		if !exists || !PropsEqual(prevVal, nextVal) {
			d.Set = append(d.Set, Attr{Key: key, Value: nextVal})
		}
	}

	return d
}

func handlerOf(v any) *Handler {
	switch h := v.(type) {
	case *Handler:
		return h
	case nil:
		return nil
	default:
		// Raw callbacks never compare equal, so they are always rebound.
		return &Handler{Fn: v}
	}
}

func sortedKeys(p Props) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PropsEqual compares two prop values for equality.
func PropsEqual(a, b any) bool {
	// Fast path for common types
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
		return false
	case int:
		if bv, ok := b.(int); ok {
			return av == bv
		}
		return false
	case int64:
		if bv, ok := b.(int64); ok {
			return av == bv
		}
		return false
	case float64:
		if bv, ok := b.(float64); ok {
			return av == bv
		}
		return false
	case bool:
		if bv, ok := b.(bool); ok {
			return av == bv
		}
		return false
	case nil:
		return b == nil
	}
	// Fallback to reflect for complex types
	return reflect.DeepEqual(a, b)
}

// ValueString converts an attribute value to the string a host displays.
func ValueString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
