package engine

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/decls"
	"github.com/google/cel-go/common/types"

	"github.com/meridian-grc/keel/pkg/policy"
)

// GuardEvaluator compiles and runs optional per-tier CEL guard expressions.
// Guards only ever narrow a tier match; compilation failures and runtime
// errors are fail-closed (the tier does not trigger).
type GuardEvaluator struct {
	mu    sync.Mutex
	env   *cel.Env
	cache map[string]cel.Program
}

// NewGuardEvaluator initializes the CEL environment with the four context
// roots exposed to guard authors.
func NewGuardEvaluator() (*GuardEvaluator, error) {
	env, err := cel.NewEnv(
		cel.VariableDecls(
			decls.NewVariable("caseCtx", types.NewMapType(types.StringType, types.DynType)),
			decls.NewVariable("policyCtx", types.NewMapType(types.StringType, types.DynType)),
			decls.NewVariable("programCtx", types.NewMapType(types.StringType, types.DynType)),
			decls.NewVariable("exception", types.NewMapType(types.StringType, types.DynType)),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	return &GuardEvaluator{env: env, cache: make(map[string]cel.Program)}, nil
}

// Compile compiles a guard source, caching the program. Used by the
// validator to reject non-compiling guards at authoring time.
func (g *GuardEvaluator) Compile(source string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.programLocked(source)
	return err
}

func (g *GuardEvaluator) programLocked(source string) (cel.Program, error) {
	if prg, ok := g.cache[source]; ok {
		return prg, nil
	}
	ast, issues := g.env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("guard compilation failed: %w", issues.Err())
	}
	prg, err := g.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("guard program construction failed: %w", err)
	}
	g.cache[source] = prg
	return prg, nil
}

// Evaluate runs a guard against the context. Any failure returns false with
// the error for diagnostics; callers must treat false as "tier not
// triggered" and never as a hard failure.
func (g *GuardEvaluator) Evaluate(source string, ctx *policy.EvaluationContext) (bool, error) {
	g.mu.Lock()
	prg, err := g.programLocked(source)
	g.mu.Unlock()
	if err != nil {
		return false, err
	}

	input := map[string]any{
		"caseCtx":    bagInput(ctxCaseFields(ctx)),
		"policyCtx":  bagInput(ctxPolicyFields(ctx)),
		"programCtx": bagInput(ctxProgramFields(ctx)),
		"exception":  exceptionInput(ctx),
	}
	out, _, err := prg.Eval(input)
	if err != nil {
		return false, fmt.Errorf("guard evaluation failed: %w", err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("guard returned non-boolean %T", out.Value())
	}
	return matched, nil
}

func bagInput(b policy.Bag) map[string]any {
	if b == nil {
		return map[string]any{}
	}
	return b
}

func ctxCaseFields(ctx *policy.EvaluationContext) policy.Bag {
	if ctx == nil || ctx.Case == nil {
		return nil
	}
	return ctx.Case.Fields
}

func ctxPolicyFields(ctx *policy.EvaluationContext) policy.Bag {
	if ctx == nil || ctx.Policy == nil {
		return nil
	}
	return ctx.Policy.Fields
}

func ctxProgramFields(ctx *policy.EvaluationContext) policy.Bag {
	if ctx == nil || ctx.Program == nil {
		return nil
	}
	return ctx.Program.Fields
}

func exceptionInput(ctx *policy.EvaluationContext) map[string]any {
	if ctx == nil || ctx.Exception == nil {
		return map[string]any{}
	}
	e := ctx.Exception
	return map[string]any{
		"hardBreach":        e.HardBreach,
		"count":             e.Count,
		"items":             e.Items,
		"hasExceptionDraft": e.HasExceptionDraft,
	}
}
