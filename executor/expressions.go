package executor

import (
	"strings"

	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
)

// EvalExpressionBinding evaluates an ExpressionBinding's Expr for every
// row in seed and binds the result to its single Assigned vertex.
// Multi-value destructuring assignment (len(Assigned) > 1) is left to a
// function call binding, since a bare expression only ever produces one
// value.
func EvalExpressionBinding(c ir.ExpressionBinding, seed Batch) (Batch, error) {
	if len(c.Assigned) != 1 {
		return nil, compileError("expression binding must assign exactly one variable, got %d", len(c.Assigned))
	}
	out, ok := variableOf(c.Assigned[0])
	if !ok {
		return nil, compileError("expression binding target must be a variable")
	}

	result := make(Batch, 0, len(seed))
	for _, row := range seed {
		val, err := evalExpr(c.Expr, row)
		if err != nil {
			return nil, err
		}
		next := row.Clone()
		next[out] = val
		result = append(result, next)
	}
	return result, nil
}

func evalExpr(e ir.Expr, row Row) (concept.VariableValue, error) {
	switch expr := e.(type) {
	case ir.ExprVertex:
		val, ok := resolveVertex(expr.V, row)
		if !ok {
			return concept.VariableValue{}, compileError("unbound vertex %s in expression", expr.V.String())
		}
		return val, nil
	case ir.ExprCall:
		return evalCall(expr, row)
	default:
		return concept.VariableValue{}, compileError("%T is not an evaluable expression", e)
	}
}

func evalCall(call ir.ExprCall, row Row) (concept.VariableValue, error) {
	args := make([]concept.VariableValue, len(call.Args))
	for i, a := range call.Args {
		v, err := evalExpr(a, row)
		if err != nil {
			return concept.VariableValue{}, err
		}
		args[i] = v
	}
	switch call.Op {
	case "+", "-", "*", "/":
		return evalArith(call.Op, args)
	case "len":
		return evalLen(args)
	case "concat":
		return evalConcat(args)
	default:
		return concept.VariableValue{}, compileError("unknown expression operator %q", call.Op)
	}
}

func evalArith(op string, args []concept.VariableValue) (concept.VariableValue, error) {
	if len(args) != 2 {
		return concept.VariableValue{}, compileError("%q requires exactly 2 arguments, got %d", op, len(args))
	}
	left, lok := numericValue(args[0])
	right, rok := numericValue(args[1])
	if !lok || !rok {
		return concept.VariableValue{}, compileError("%q requires numeric operands", op)
	}
	var result float64
	switch op {
	case "+":
		result = left + right
	case "-":
		result = left - right
	case "*":
		result = left * right
	case "/":
		if right == 0 {
			return concept.VariableValue{}, compileError("division by zero")
		}
		result = left / right
	}
	return concept.VariableValue{Kind: concept.VarValue, Value: concept.DoubleValue(result)}, nil
}

func evalLen(args []concept.VariableValue) (concept.VariableValue, error) {
	if len(args) != 1 {
		return concept.VariableValue{}, compileError("len requires exactly 1 argument, got %d", len(args))
	}
	s, ok := args[0].Value.(string)
	if !ok {
		return concept.VariableValue{}, compileError("len requires a string argument")
	}
	return concept.VariableValue{Kind: concept.VarValue, Value: concept.LongValue(int64(len(s)))}, nil
}

func evalConcat(args []concept.VariableValue) (concept.VariableValue, error) {
	var b strings.Builder
	for _, a := range args {
		s, ok := a.Value.(string)
		if !ok {
			return concept.VariableValue{}, compileError("concat requires string arguments")
		}
		b.WriteString(s)
	}
	return concept.VariableValue{Kind: concept.VarValue, Value: concept.StringValue(b.String())}, nil
}

func numericValue(v concept.VariableValue) (float64, bool) {
	switch n := v.Value.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
