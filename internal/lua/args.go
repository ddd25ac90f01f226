package lua

import (
	"fmt"

	rt "github.com/arnodel/golua/runtime"
)

// getAllArgs combines Args() and Etc() to get all arguments including varargs.
func getAllArgs(c *rt.GoCont) []rt.Value {
	return append(c.Args(), c.Etc()...)
}

// argList is the argument vector of a binding, without the receiver.
type argList []rt.Value

func (a argList) present(idx int) bool {
	return idx < len(a) && !a[idx].IsNil()
}

func toFloat(v rt.Value) (float64, bool) {
	if f, ok := v.TryFloat(); ok {
		return f, true
	}
	if i, ok := v.TryInt(); ok {
		return float64(i), true
	}
	return 0, false
}

func (a argList) float(idx int) (float64, error) {
	if !a.present(idx) {
		return 0, fmt.Errorf("%w: argument %d missing", ErrInvalidArgument, idx+1)
	}
	f, ok := toFloat(a[idx])
	if !ok {
		return 0, fmt.Errorf("%w: argument %d is not a number", ErrInvalidArgument, idx+1)
	}
	return f, nil
}

// floats reads n consecutive numbers starting at idx.
func (a argList) floats(idx, n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		f, err := a.float(idx + i)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func (a argList) optFloat(idx int, def float64) (float64, error) {
	if !a.present(idx) {
		return def, nil
	}
	return a.float(idx)
}

func (a argList) str(idx int) (string, error) {
	if !a.present(idx) {
		return "", fmt.Errorf("%w: argument %d missing", ErrInvalidArgument, idx+1)
	}
	if s, ok := a[idx].TryString(); ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: argument %d is not a string", ErrInvalidArgument, idx+1)
}

// boolean applies Lua truthiness: only nil and false are false.
func (a argList) boolean(idx int) bool {
	if !a.present(idx) {
		return false
	}
	if b, ok := a[idx].TryBool(); ok {
		return b
	}
	return true
}

func (a argList) function(idx int) (rt.Value, error) {
	if !a.present(idx) || a[idx].Type() != rt.FunctionType {
		return rt.NilValue, fmt.Errorf("%w: argument %d is not a function", ErrInvalidArgument, idx+1)
	}
	return a[idx], nil
}

func (a argList) table(idx int) (*rt.Table, error) {
	if a.present(idx) {
		if tbl, ok := a[idx].TryTable(); ok {
			return tbl, nil
		}
	}
	return nil, fmt.Errorf("%w: argument %d is not a table", ErrInvalidArgument, idx+1)
}

// userData returns the payload of a userdata argument as T.
func userData[T any](a argList, idx int) (T, bool) {
	var zero T
	if !a.present(idx) {
		return zero, false
	}
	ud, ok := a[idx].TryUserData()
	if !ok {
		return zero, false
	}
	v, ok := ud.Value().(T)
	return v, ok
}

func requireUserData[T any](a argList, idx int, kind string) (T, error) {
	v, ok := userData[T](a, idx)
	if !ok {
		return v, fmt.Errorf("%w: argument %d is not %s", ErrInvalidArgument, idx+1, kind)
	}
	return v, nil
}

// numberList reads the array part of a Lua table as numbers.
func numberList(tbl *rt.Table) ([]float64, error) {
	var out []float64
	for i := int64(1); ; i++ {
		v := tbl.Get(rt.IntValue(i))
		if v.IsNil() {
			return out, nil
		}
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is not a number", ErrInvalidArgument, i)
		}
		out = append(out, f)
	}
}

func floatTable(values []float64) *rt.Table {
	tbl := rt.NewTable()
	for i, v := range values {
		tbl.Set(rt.IntValue(int64(i+1)), rt.FloatValue(v))
	}
	return tbl
}

func stringTable(values []string) *rt.Table {
	tbl := rt.NewTable()
	for i, v := range values {
		tbl.Set(rt.IntValue(int64(i+1)), rt.StringValue(v))
	}
	return tbl
}

func clampByte(v float64) uint8 {
	switch {
	case v != v || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
