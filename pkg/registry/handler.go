package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
)

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// Handler holds metadata about a registered job function.
type Handler struct {
	fn         reflect.Value
	argTypes   []reflect.Type
	hasContext bool
	hasResult  bool
}

// NewHandler wraps a function for invocation with stored job arguments.
// The function may take an optional leading context.Context followed by any
// number of JSON-serializable parameters, and must return error or (T, error).
func NewHandler(fn any) (*Handler, error) {
	if fn == nil {
		return nil, fmt.Errorf("function cannot be nil")
	}

	fnVal := reflect.ValueOf(fn)
	if !fnVal.IsValid() || (fnVal.Kind() == reflect.Func && fnVal.IsNil()) {
		return nil, fmt.Errorf("function cannot be nil")
	}

	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("handler must be a function")
	}
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("variadic functions are not supported")
	}

	h := &Handler{fn: fnVal}

	argIdx := 0
	if fnType.NumIn() > 0 && fnType.In(0).Implements(ctxType) {
		h.hasContext = true
		argIdx = 1
	}
	for i := argIdx; i < fnType.NumIn(); i++ {
		h.argTypes = append(h.argTypes, fnType.In(i))
	}

	switch fnType.NumOut() {
	case 1:
		if !fnType.Out(0).Implements(errType) {
			return nil, fmt.Errorf("function must return error")
		}
	case 2:
		if !fnType.Out(1).Implements(errType) {
			return nil, fmt.Errorf("function must return (T, error)")
		}
		h.hasResult = true
	default:
		return nil, fmt.Errorf("function must return error or (T, error)")
	}

	return h, nil
}

// NumArgs returns the number of job arguments the function expects,
// excluding the context parameter.
func (h *Handler) NumArgs() int {
	return len(h.argTypes)
}

// Invoke calls the function with the stored argument sequence (a JSON
// array) and returns the marshaled result. Functions without a result
// value yield JSON null, so every success carries a stored result.
func (h *Handler) Invoke(ctx context.Context, argsJSON []byte) ([]byte, error) {
	var raw []json.RawMessage
	if len(argsJSON) > 0 {
		if err := json.Unmarshal(argsJSON, &raw); err != nil {
			return nil, fmt.Errorf("malformed argument sequence: %w", err)
		}
	}
	if len(raw) != len(h.argTypes) {
		return nil, fmt.Errorf("expects %d arguments, got %d", len(h.argTypes), len(raw))
	}

	callArgs := make([]reflect.Value, 0, len(h.argTypes)+1)
	if h.hasContext {
		callArgs = append(callArgs, reflect.ValueOf(ctx))
	}
	for i, t := range h.argTypes {
		argPtr := reflect.New(t)
		if err := json.Unmarshal(raw[i], argPtr.Interface()); err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		callArgs = append(callArgs, argPtr.Elem())
	}

	results := h.fn.Call(callArgs)

	if h.hasResult {
		if !results[1].IsNil() {
			return nil, results[1].Interface().(error)
		}
		out, err := json.Marshal(results[0].Interface())
		if err != nil {
			return nil, fmt.Errorf("unserializable result: %w", err)
		}
		return out, nil
	}

	if !results[0].IsNil() {
		return nil, results[0].Interface().(error)
	}
	return []byte("null"), nil
}
