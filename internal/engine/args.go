package engine

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/roach88/cutroom/internal/ir"
)

// args is an argument set already checked against its op signature, so
// accessors never fail: a missing optional arg reads as the zero value.
type args struct {
	op  ir.OpName
	obj ir.IRObject
}

// checkArgs rejects unknown, missing and mistyped args. Keys are checked in
// sorted order so the reported arg is stable.
func checkArgs(sig ir.OpSig, obj ir.IRObject) (args, error) {
	for _, name := range obj.SortedKeys() {
		spec, ok := sig.Arg(name)
		if !ok {
			return args{}, argError(sig.Name, name, "unknown argument")
		}
		if !typeMatches(spec.Type, obj[name]) {
			return args{}, argError(sig.Name, name, "want %s, got %T", spec.Type, obj[name])
		}
	}
	for _, spec := range sig.Args {
		if _, ok := obj[spec.Name]; !ok && !spec.Optional {
			return args{}, argError(sig.Name, spec.Name, "missing required argument")
		}
	}
	return args{op: sig.Name, obj: obj}, nil
}

func typeMatches(t ir.ArgType, v ir.IRValue) bool {
	switch t {
	case ir.ArgString:
		_, ok := v.(ir.IRString)
		return ok
	case ir.ArgInt, ir.ArgTime, ir.ArgScale:
		_, ok := v.(ir.IRInt)
		return ok
	case ir.ArgBool:
		_, ok := v.(ir.IRBool)
		return ok
	case ir.ArgObject:
		_, ok := v.(ir.IRObject)
		return ok
	}
	return false
}

func (a args) has(name string) bool {
	_, ok := a.obj[name]
	return ok
}

func (a args) str(name string) string {
	return a.obj.String(name)
}

func (a args) int(name string) int {
	n, _ := a.obj.Int(name)
	return int(n)
}

// seconds reads an ArgTime or ArgScale value.
func (a args) seconds(name string) float64 {
	n, _ := a.obj.Int(name)
	return ir.Seconds(n)
}

func (a args) bool(name string) bool {
	b, _ := a.obj[name].(ir.IRBool)
	return bool(b)
}

func (a args) object(name string) ir.IRObject {
	o, _ := a.obj[name].(ir.IRObject)
	return o
}

func (a args) optString(name string) *string {
	if !a.has(name) {
		return nil
	}
	s := a.str(name)
	return &s
}

func (a args) optInt(name string) *int {
	if !a.has(name) {
		return nil
	}
	n := a.int(name)
	return &n
}

func (a args) optBool(name string) *bool {
	if !a.has(name) {
		return nil
	}
	b := a.bool(name)
	return &b
}

// EncodeArgs converts native args, as decoded from YAML or JSON, into IR
// args for op. Times and scales are given in seconds (or plain factors) and
// become microseconds.
func EncodeArgs(op ir.OpName, native map[string]any) (ir.IRObject, error) {
	def, ok := catalog[op]
	if !ok {
		return nil, &CommandError{Code: CodeUnknownOp, Message: "unknown op", Op: op}
	}
	obj := make(ir.IRObject, len(native))
	for name, v := range native {
		spec, ok := def.sig.Arg(name)
		if !ok {
			return nil, argError(op, name, "unknown argument")
		}
		irv, err := encodeArg(spec.Type, v)
		if err != nil {
			return nil, argError(op, name, "%v", err)
		}
		obj[name] = irv
	}
	return obj, nil
}

func encodeArg(t ir.ArgType, v any) (ir.IRValue, error) {
	switch t {
	case ir.ArgTime, ir.ArgScale:
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("want finite number, got %v", f)
		}
		return ir.Micros(f), nil
	case ir.ArgInt:
		n, err := toInt(v)
		if err != nil {
			return nil, err
		}
		return ir.IRInt(n), nil
	case ir.ArgString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("want string, got %T", v)
		}
		return ir.IRString(s), nil
	case ir.ArgBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("want bool, got %T", v)
		}
		return ir.IRBool(b), nil
	case ir.ArgObject:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("want object, got %T", v)
		}
		return ir.FromNative(m)
	}
	return nil, fmt.Errorf("unsupported argument type %s", t)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	}
	return 0, fmt.Errorf("want number, got %T", v)
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d overflows int64", x)
		}
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) || math.Abs(x) > 1<<53 {
			return 0, fmt.Errorf("want integer, got %v", x)
		}
		return int64(x), nil
	case json.Number:
		return x.Int64()
	}
	return 0, fmt.Errorf("want integer, got %T", v)
}
