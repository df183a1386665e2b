package core

import (
	"reflect"
	"strings"
)

// Invocation identifies one intercepted call.
type Invocation struct {
	// Instance is the receiving mock, nil for package functions and constructors.
	Instance any
	// Type identifies the declaring type, e.g. "shop.Inventory".
	Type   string
	Method string
	// Signature is the func type of the call without its receiver.
	Signature   reflect.Type
	Constructor bool
	// Args holds the runtime arguments. A variadic tail arrives as one slice.
	Args []any
}

// Site renders the call site: declaring type, method and signature.
func (inv Invocation) Site() string {
	name := inv.Type + "." + inv.Method
	if inv.Constructor {
		name = "new " + inv.Type
	}

	return name + signatureString(inv.Signature)
}

// String renders the call site together with its arguments and instance.
func (inv Invocation) String() string {
	return inv.describe(inv.Args)
}

// Variadic reports whether the last parameter is variadic.
func (inv Invocation) Variadic() bool {
	return inv.Signature != nil && inv.Signature.IsVariadic()
}

// Void reports whether the call has no outputs.
func (inv Invocation) Void() bool {
	return inv.Signature == nil || inv.Signature.NumOut() == 0
}

func (inv Invocation) describe(args []any) string {
	var builder strings.Builder

	builder.WriteString(inv.Site())

	if len(args) > 0 {
		builder.WriteString("\nwith arguments: ")
		builder.WriteString(formatArgs(args))
	}

	if inv.Instance != nil && !inv.Constructor {
		builder.WriteString("\non mock instance: ")
		builder.WriteString(objectIdentity(inv.Instance))
	}

	return builder.String()
}

// flatArgs returns the arguments with a variadic tail expanded, and the count of regular parameters.
func (inv Invocation) flatArgs() ([]any, int) {
	if !inv.Variadic() || len(inv.Args) == 0 {
		return inv.Args, len(inv.Args)
	}

	regular := len(inv.Args) - 1
	flat := append([]any{}, inv.Args[:regular]...)
	flat = append(flat, expandVarargs(inv.Args[regular])...)

	return flat, regular
}

func (inv Invocation) outputTypes() []reflect.Type {
	if inv.Signature == nil {
		return nil
	}

	outs := make([]reflect.Type, inv.Signature.NumOut())
	for i := range outs {
		outs[i] = inv.Signature.Out(i)
	}

	return outs
}

// sameSite reports whether both invocations target the same declared method.
func (inv Invocation) sameSite(other Invocation) bool {
	if inv.Type != other.Type || inv.Method != other.Method || inv.Constructor != other.Constructor {
		return false
	}

	return inv.Signature == nil || other.Signature == nil || inv.Signature == other.Signature
}

func expandVarargs(tail any) []any {
	if tail == nil {
		return nil
	}

	rv := reflect.ValueOf(tail)
	if rv.Kind() != reflect.Slice {
		return []any{tail}
	}

	values := make([]any, rv.Len())
	for i := range values {
		values[i] = rv.Index(i).Interface()
	}

	return values
}
