package eval

import (
	"context"
	"log/slog"

	"veridian-hq/covenant/pkg/dsl/ast"
	dslerrors "veridian-hq/covenant/pkg/dsl/errors"
	"veridian-hq/covenant/pkg/dsl/value"
)

// Interpreter evaluates DSL programs against an environment and a fixed
// builtin registry.
type Interpreter struct {
	builtins Registry
	root     *Env
	logger   *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the interpreter's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) { i.logger = logger }
}

// New creates an Interpreter with the given builtin registry.
func New(builtins Registry, opts ...Option) *Interpreter {
	i := &Interpreter{
		builtins: builtins,
		root:     NewEnv(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Root returns the interpreter's root scope, so callers can pre-bind names
// (the loader binds `imports` this way) before executing a program.
func (i *Interpreter) Root() *Env { return i.root }

// Execute evaluates a program's statements top to bottom in the root scope
// and returns the root bindings as an ordered dict.
func (i *Interpreter) Execute(ctx context.Context, prog *ast.Program) (*value.Dict, error) {
	for _, stmt := range prog.Statements {
		if err := i.execStatement(ctx, stmt, i.root); err != nil {
			return nil, err
		}
	}
	return i.root.Snapshot(), nil
}

func (i *Interpreter) execStatement(ctx context.Context, stmt ast.Stmt, env *Env) error {
	switch s := stmt.(type) {
	case *ast.Binding:
		v, err := i.Eval(ctx, s.Value, env)
		if err != nil {
			return err
		}
		if s.Op == ast.BindTyped {
			v, err = checkType(v, s.TypeName, s.Name, s.Loc)
			if err != nil {
				return err
			}
		}
		if fn, ok := v.(*value.Function); ok && fn.Name == "" {
			fn.Name = s.Name
		}
		env.Define(s.Name, v)
		return nil

	case *ast.ExprStmt:
		_, err := i.Eval(ctx, s.X, env)
		return err
	}
	return dslerrors.NewEvalError(dslerrors.KindTypeMismatch, stmt.Pos(), "unknown statement type %T", stmt)
}

// Eval evaluates a single expression in the given scope.
func (i *Interpreter) Eval(ctx context.Context, expr ast.Expr, env *Env) (value.Value, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return value.Int(e.Value), nil
	case *ast.FloatLit:
		return value.Float(e.Value), nil
	case *ast.StringLit:
		return value.Str(e.Value), nil
	case *ast.BoolLit:
		return value.Bool(e.Value), nil
	case *ast.WildcardLit:
		return value.WildcardValue, nil

	case *ast.Ident:
		return i.resolve(e.Name, env, e.Loc)

	case *ast.ListLit:
		elements := make([]value.Value, len(e.Elements))
		for idx, el := range e.Elements {
			v, err := i.Eval(ctx, el, env)
			if err != nil {
				return nil, err
			}
			elements[idx] = v
		}
		return &value.List{Elements: elements}, nil

	case *ast.TupleLit:
		elements := make([]value.Value, len(e.Elements))
		for idx, el := range e.Elements {
			v, err := i.Eval(ctx, el, env)
			if err != nil {
				return nil, err
			}
			elements[idx] = v
		}
		return &value.Tuple{Elements: elements}, nil

	case *ast.DictLit:
		d := value.NewDict()
		for _, entry := range e.Entries {
			v, err := i.Eval(ctx, entry.Value, env)
			if err != nil {
				return nil, err
			}
			d.Set(entry.Key, v)
		}
		return d, nil

	case *ast.FunctionDef:
		return &value.Function{Def: e}, nil

	case *ast.UnaryOp:
		return i.evalUnary(ctx, e, env)

	case *ast.BinaryOp:
		return i.evalBinary(ctx, e, env)

	case *ast.Pipe:
		return i.evalPipe(ctx, e, env)

	case *ast.Match:
		return i.evalMatch(ctx, e, env)

	case *ast.DotAccess:
		return i.evalDot(ctx, e, env)

	case *ast.Call:
		return i.evalCall(ctx, e, env)
	}

	return nil, dslerrors.NewEvalError(dslerrors.KindTypeMismatch, expr.Pos(), "unknown expression type %T", expr)
}

// resolve looks a name up through the scope chain, then the builtin
// registry, then the type-name table.
func (i *Interpreter) resolve(name string, env *Env, loc ast.Location) (value.Value, error) {
	if v, ok := env.Lookup(name); ok {
		return v, nil
	}
	if _, ok := i.builtins[name]; ok {
		return &value.Builtin{Name: name}, nil
	}
	if _, ok := typeNames[name]; ok {
		return value.Str(name), nil
	}
	return nil, dslerrors.NewEvalError(dslerrors.KindUndefinedName, loc, "undefined name %q", name)
}

func (i *Interpreter) evalUnary(ctx context.Context, e *ast.UnaryOp, env *Env) (value.Value, error) {
	operand, err := i.Eval(ctx, e.Operand, env)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "not":
		return value.Bool(!value.Truthy(operand)), nil
	case "-":
		switch v := operand.(type) {
		case value.Int:
			return -v, nil
		case value.Float:
			return -v, nil
		}
		return nil, dslerrors.NewEvalError(dslerrors.KindTypeMismatch, e.Loc,
			"cannot negate %s", operand.Kind())
	}
	return nil, dslerrors.NewEvalError(dslerrors.KindTypeMismatch, e.Loc, "unknown unary operator %q", e.Op)
}

func (i *Interpreter) evalBinary(ctx context.Context, e *ast.BinaryOp, env *Env) (value.Value, error) {
	left, err := i.Eval(ctx, e.Left, env)
	if err != nil {
		return nil, err
	}

	// Logical operators short-circuit and yield the deciding operand.
	switch e.Op {
	case ast.OpAnd:
		if !value.Truthy(left) {
			return left, nil
		}
		return i.Eval(ctx, e.Right, env)
	case ast.OpOr:
		if value.Truthy(left) {
			return left, nil
		}
		return i.Eval(ctx, e.Right, env)
	}

	right, err := i.Eval(ctx, e.Right, env)
	if err != nil {
		return nil, err
	}
	return applyBinary(e.Op, left, right, e.Loc)
}

// evalPipe threads the source value into the stage as its first positional
// argument, regardless of how many extra arguments the stage supplies.
func (i *Interpreter) evalPipe(ctx context.Context, e *ast.Pipe, env *Env) (value.Value, error) {
	source, err := i.Eval(ctx, e.Source, env)
	if err != nil {
		return nil, err
	}

	if call, ok := e.Stage.(*ast.Call); ok {
		fn, err := i.Eval(ctx, call.Callee, env)
		if err != nil {
			return nil, err
		}
		args := []value.Value{source}
		for _, a := range call.Args {
			v, err := i.Eval(ctx, a, env)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		kwargs, err := i.evalKwargs(ctx, call.Kwargs, env)
		if err != nil {
			return nil, err
		}
		return i.Call(ctx, fn, args, kwargs)
	}

	fn, err := i.Eval(ctx, e.Stage, env)
	if err != nil {
		return nil, err
	}
	return i.Call(ctx, fn, []value.Value{source}, nil)
}

// evalMatch tries guards in listed order with the subject bound to `@`.
func (i *Interpreter) evalMatch(ctx context.Context, e *ast.Match, env *Env) (value.Value, error) {
	subject, err := i.Eval(ctx, e.Subject, env)
	if err != nil {
		return nil, err
	}

	guardEnv := NewEnclosed(env)
	guardEnv.Define("@", subject)

	for _, clause := range e.Clauses {
		if clause.Cond == nil {
			return i.Eval(ctx, clause.Result, guardEnv)
		}
		matched, err := i.Eval(ctx, clause.Cond, guardEnv)
		if err != nil {
			return nil, err
		}
		if value.Truthy(matched) {
			return i.Eval(ctx, clause.Result, guardEnv)
		}
	}

	return nil, dslerrors.NewEvalError(dslerrors.KindMatchExhausted, e.Loc,
		"no guard matched %s and no catch-all clause exists", subject)
}

func (i *Interpreter) evalDot(ctx context.Context, e *ast.DotAccess, env *Env) (value.Value, error) {
	base, err := i.Eval(ctx, e.Base, env)
	if err != nil {
		return nil, err
	}

	switch b := base.(type) {
	case *value.Dict:
		if v, ok := b.Get(e.Segment); ok {
			return v, nil
		}
	case *value.Module:
		return b.Attrs.Attr(e.Segment)
	}

	return nil, dslerrors.NewEvalError(dslerrors.KindPathNotFound, e.Loc,
		"path segment %q not found in %s", e.Segment, base.Kind())
}

func (i *Interpreter) evalCall(ctx context.Context, e *ast.Call, env *Env) (value.Value, error) {
	fn, err := i.Eval(ctx, e.Callee, env)
	if err != nil {
		return nil, err
	}

	args := make([]value.Value, len(e.Args))
	for idx, a := range e.Args {
		v, err := i.Eval(ctx, a, env)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}
	kwargs, err := i.evalKwargs(ctx, e.Kwargs, env)
	if err != nil {
		return nil, err
	}

	result, err := i.Call(ctx, fn, args, kwargs)
	if err != nil {
		if evalErr, ok := err.(*dslerrors.EvalError); ok && !evalErr.Location.IsValid() {
			evalErr.Location = e.Loc
		}
		return nil, err
	}
	return result, nil
}

func (i *Interpreter) evalKwargs(ctx context.Context, kwargs []ast.Kwarg, env *Env) (map[string]value.Value, error) {
	if len(kwargs) == 0 {
		return nil, nil
	}
	out := make(map[string]value.Value, len(kwargs))
	for _, kw := range kwargs {
		v, err := i.Eval(ctx, kw.Value, env)
		if err != nil {
			return nil, err
		}
		out[kw.Name] = v
	}
	return out, nil
}

// Call invokes a function or builtin value with evaluated arguments. It
// implements the Caller interface consumed by higher-order builtins.
func (i *Interpreter) Call(ctx context.Context, fn value.Value, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	switch f := fn.(type) {
	case *value.Function:
		return i.callFunction(ctx, f, args, kwargs)

	case *value.Builtin:
		impl, ok := i.builtins[f.Name]
		if !ok {
			return nil, dslerrors.NewEvalError(dslerrors.KindUndefinedName, ast.Location{},
				"unknown builtin %q", f.Name)
		}
		return impl(ctx, &Invocation{Name: f.Name, Args: args, Kwargs: kwargs, Caller: i})
	}

	return nil, dslerrors.NewEvalError(dslerrors.KindTypeMismatch, ast.Location{},
		"%s is not callable", fn.Kind())
}

// callFunction binds arguments to declared parameters (positionally first,
// then by keyword), runs the body in a fresh scope over the root scope, and
// packs the declared outputs.
func (i *Interpreter) callFunction(ctx context.Context, fn *value.Function, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	def := fn.Def
	loc := def.Loc
	name := fn.Name
	if name == "" {
		name = "function"
	}

	if len(args) > len(def.Params) {
		return nil, dslerrors.NewEvalError(dslerrors.KindArityMismatch, loc,
			"%s takes %d arguments, got %d", name, len(def.Params), len(args))
	}

	local := NewEnclosed(i.root)
	for idx, param := range def.Params {
		var v value.Value
		switch {
		case idx < len(args):
			if _, dup := kwargs[param.Name]; dup {
				return nil, dslerrors.NewEvalError(dslerrors.KindArityMismatch, loc,
					"%s: parameter %q supplied twice", name, param.Name)
			}
			v = args[idx]
		default:
			kv, ok := kwargs[param.Name]
			if !ok {
				return nil, dslerrors.NewEvalError(dslerrors.KindArityMismatch, loc,
					"%s: missing argument %q", name, param.Name)
			}
			v = kv
		}

		checked, err := checkType(v, param.Type, param.Name, loc)
		if err != nil {
			return nil, err
		}
		local.Define(param.Name, checked)
	}

	for kw := range kwargs {
		known := false
		for _, param := range def.Params {
			if param.Name == kw {
				known = true
				break
			}
		}
		if !known {
			return nil, dslerrors.NewEvalError(dslerrors.KindArityMismatch, loc,
				"%s: unknown keyword argument %q", name, kw)
		}
	}

	for _, stmt := range def.Body {
		if err := i.execStatement(ctx, stmt, local); err != nil {
			return nil, err
		}
	}

	outputs := make([]value.Value, len(def.Returns))
	for idx, ret := range def.Returns {
		v, ok := local.Lookup(ret.Name)
		if !ok {
			return nil, dslerrors.NewEvalError(dslerrors.KindUndefinedName, loc,
				"%s: output %q is not bound in the function body", name, ret.Name)
		}
		outputs[idx] = v
	}

	switch len(outputs) {
	case 0:
		return value.NilValue, nil
	case 1:
		return outputs[0], nil
	default:
		return &value.Tuple{Elements: outputs}, nil
	}
}

// logger is used by builtins that want structured diagnostics.
func (i *Interpreter) Logger() *slog.Logger { return i.logger }

var _ Caller = (*Interpreter)(nil)
