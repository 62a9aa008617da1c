// Package buildutil extracts call arguments from buildtools Starlark ASTs.
package buildutil

import (
	"strconv"

	"github.com/bazelbuild/buildtools/build"
)

// Keyword returns the value of the keyword argument name, or nil when the
// call has no such argument.
func Keyword(call *build.CallExpr, name string) build.Expr {
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		if lhs, ok := assign.LHS.(*build.Ident); ok && lhs.Name == name {
			return assign.RHS
		}
	}
	return nil
}

// String extracts a string argument by keyword. If name is empty, the
// first positional argument is used instead. Returns "" when the argument
// is missing or not a string.
func String(call *build.CallExpr, name string) string {
	var expr build.Expr
	if name == "" {
		if len(call.List) > 0 {
			expr = call.List[0]
		}
	} else {
		expr = Keyword(call, name)
	}
	if str, ok := expr.(*build.StringExpr); ok {
		return str.Value
	}
	return ""
}

// Int extracts an integer argument by keyword. Returns 0 if the argument is
// missing or not a valid integer.
func Int(call *build.CallExpr, name string) int {
	if lit, ok := Keyword(call, name).(*build.LiteralExpr); ok {
		if n, err := strconv.Atoi(lit.Token); err == nil {
			return n
		}
	}
	return 0
}

// Bool extracts a True/False argument by keyword. Returns false if the
// argument is missing or not a boolean identifier.
func Bool(call *build.CallExpr, name string) bool {
	ident, ok := Keyword(call, name).(*build.Ident)
	return ok && ident.Name == "True"
}

// StringList extracts a list of strings by keyword. Returns nil if the
// argument is missing or not a list. Non-string elements are skipped.
func StringList(call *build.CallExpr, name string) []string {
	list, ok := Keyword(call, name).(*build.ListExpr)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list.List))
	for _, elem := range list.List {
		if str, ok := elem.(*build.StringExpr); ok {
			out = append(out, str.Value)
		}
	}
	return out
}

// FuncName returns the function name of a call, or "" for anything but a
// plain function call (e.g. foo.bar()).
func FuncName(call *build.CallExpr) string {
	if ident, ok := call.X.(*build.Ident); ok {
		return ident.Name
	}
	return ""
}

// UnknownKeywords returns, in call order, the keyword arguments of call
// whose names are not in allowed.
func UnknownKeywords(call *build.CallExpr, allowed ...string) []string {
	var unknown []string
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		lhs, ok := assign.LHS.(*build.Ident)
		if !ok {
			continue
		}
		known := false
		for _, a := range allowed {
			if a == lhs.Name {
				known = true
				break
			}
		}
		if !known {
			unknown = append(unknown, lhs.Name)
		}
	}
	return unknown
}
