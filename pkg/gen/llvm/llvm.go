package llvm

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/kartiknair/math/pkg/ast"
)

type generator struct {
	module *ir.Module

	// fns holds, per source name, the native function a call site
	// binds to at the current point in the statement sequence.
	// Redefinition replaces the entry, so already generated bodies
	// keep calling the definition they saw.
	fns     map[ast.Name]*ir.Func
	fnCount map[ast.Name]int

	strs     map[string]constant.Constant
	strCount int

	printf  *ir.Func
	strtoll *ir.Func
}

// synthesiser emits the code for one native function. block is the
// cursor: match lowering moves it as branches are created, so every
// instruction lands in the block that is live at that point.
type synthesiser struct {
	g     *generator
	fn    *ir.Func
	block *ir.Block
	vars  map[ast.Name]value.Value
}

// Gen lowers an analyzed program to textual LLVM IR. The program must
// have passed analysis; unresolved names at this point are internal
// bugs and panic.
func Gen(program *ast.Program) string {
	g := &generator{
		module:  ir.NewModule(),
		fns:     make(map[ast.Name]*ir.Func),
		fnCount: make(map[ast.Name]int),
		strs:    make(map[string]constant.Constant),
	}

	g.printf = g.module.NewFunc(
		"printf",
		types.I32,
		ir.NewParam("format", types.I8Ptr),
	)
	g.printf.Sig.Variadic = true

	g.strtoll = g.module.NewFunc(
		"strtoll",
		types.I64,
		ir.NewParam("str", types.I8Ptr),
		ir.NewParam("end", types.NewPointer(types.I8Ptr)),
		ir.NewParam("base", types.I32),
	)

	g.genMain(program)

	return g.module.String()
}

// genMain emits the entry function: decode the inputs from argv, run
// the statements, print the outputs. Any argument problem branches to
// a shared block that exits with status 1 before anything is printed.
func (g *generator) genMain(program *ast.Program) {
	argc := ir.NewParam("argc", types.I32)
	argv := ir.NewParam("argv", types.NewPointer(types.I8Ptr))
	mainFn := g.module.NewFunc("main", types.I32, argc, argv)

	s := &synthesiser{
		g:     g,
		fn:    mainFn,
		block: mainFn.NewBlock(""),
		vars:  make(map[ast.Name]value.Value),
	}

	errBlock := mainFn.NewBlock("input.error")
	errBlock.NewRet(constant.NewInt(types.I32, 1))

	wrongCount := s.block.NewICmp(
		enum.IPredNE,
		argc,
		constant.NewInt(types.I32, int64(len(program.Inputs)+1)),
	)
	countOk := mainFn.NewBlock("")
	s.block.NewCondBr(wrongCount, errBlock, countOk)
	s.block = countOk

	for i, name := range program.Inputs {
		argPtr := s.block.NewGetElementPtr(
			types.I8Ptr,
			argv,
			constant.NewInt(types.I64, int64(i+1)),
		)
		arg := s.block.NewLoad(types.I8Ptr, argPtr)

		endPtr := s.block.NewAlloca(types.I8Ptr)
		parsed := s.block.NewCall(
			g.strtoll,
			arg,
			endPtr,
			constant.NewInt(types.I32, 10),
		)

		// the argument is malformed when strtoll consumed no
		// digits or stopped before the terminating NUL.
		end := s.block.NewLoad(types.I8Ptr, endPtr)
		empty := s.block.NewICmp(enum.IPredEQ, end, arg)
		rest := s.block.NewLoad(types.I8, end)
		trailing := s.block.NewICmp(enum.IPredNE, rest, constant.NewInt(types.I8, 0))
		bad := s.block.NewOr(empty, trailing)

		decoded := mainFn.NewBlock("")
		s.block.NewCondBr(bad, errBlock, decoded)
		s.block = decoded

		alloca := s.block.NewAlloca(types.I64)
		s.block.NewStore(parsed, alloca)
		s.vars[name] = alloca
	}

	for _, statement := range program.Statements {
		switch st := statement.(type) {
		case *ast.VarAssignment:
			result := s.expression(st.Value)
			alloca, ok := s.vars[st.Name]
			if !ok {
				alloca = s.block.NewAlloca(types.I64)
				s.vars[st.Name] = alloca
			}
			s.block.NewStore(result, alloca)
		case *ast.FnDefinition:
			g.genFunction(st)
		}
	}

	for _, name := range program.Outputs {
		alloca, ok := s.vars[name]
		if !ok {
			panic(fmt.Sprintf("Unresolved output `%s`.", name))
		}
		result := s.block.NewLoad(types.I64, alloca)
		s.block.NewCall(g.printf, g.cstr("%lld\n"), result)
	}

	s.block.NewRet(constant.NewInt(types.I32, 0))
}

func (g *generator) genFunction(def *ast.FnDefinition) {
	symbol := fmt.Sprintf("math__%s", def.Name)
	if n := g.fnCount[def.Name]; n > 0 {
		symbol = fmt.Sprintf("math__%s.%d", def.Name, n)
	}
	g.fnCount[def.Name]++

	params := make([]*ir.Param, len(def.Parameters))
	for i, param := range def.Parameters {
		params[i] = ir.NewParam(string(param), types.I64)
	}
	fn := g.module.NewFunc(symbol, types.I64, params...)

	// visible to its own body, for recursion.
	g.fns[def.Name] = fn

	s := &synthesiser{
		g:     g,
		fn:    fn,
		block: fn.NewBlock(""),
		vars:  make(map[ast.Name]value.Value, len(def.Parameters)),
	}
	for i, param := range def.Parameters {
		alloca := s.block.NewAlloca(types.I64)
		s.block.NewStore(params[i], alloca)
		s.vars[param] = alloca
	}

	result := s.expression(def.Body)
	s.block.NewRet(result)
}

func (s *synthesiser) expression(e ast.Expression) value.Value {
	switch e := e.(type) {
	case *ast.I64:
		return constant.NewInt(types.I64, e.Value)
	case *ast.Group:
		return s.expression(e.Expression)
	case *ast.VarSubstitution:
		alloca, ok := s.vars[e.Name]
		if !ok {
			panic(fmt.Sprintf("Unresolved variable `%s`.", e.Name))
		}
		return s.block.NewLoad(types.I64, alloca)
	case *ast.Operation:
		left := s.expression(e.Left)
		right := s.expression(e.Right)
		switch e.Operator {
		case ast.Subtract:
			return s.block.NewSub(left, right)
		case ast.Add:
			return s.block.NewAdd(left, right)
		case ast.Divide:
			return s.block.NewSDiv(left, right)
		case ast.Multiply:
			return s.block.NewMul(left, right)
		}
		panic("Invalid operator.")
	case *ast.FnApplication:
		fn, ok := s.g.fns[e.Name]
		if !ok {
			panic(fmt.Sprintf("Unresolved function `%s`.", e.Name))
		}
		args := make([]value.Value, len(e.Arguments))
		for i, arg := range e.Arguments {
			args[i] = s.expression(arg)
		}
		return s.block.NewCall(fn, args...)
	case *ast.Match:
		return s.matchExpression(e)
	}

	panic("Invalid expression.")
}

// matchExpression lowers a match to a chain of compare-and-branch
// pairs that merge in a phi. Each clause's result expression (and the
// default) is only evaluated on its own path, so the compiled form has
// the same first-match-wins laziness as the evaluator.
func (s *synthesiser) matchExpression(m *ast.Match) value.Value {
	with := s.expression(m.With)

	type arm struct {
		result value.Value
		block  *ir.Block
	}
	var arms []arm

	for _, clause := range m.Clauses {
		matcher := s.expression(clause.Matcher.Value)
		cond := s.block.NewICmp(enum.IPredEQ, with, matcher)

		thenBlock := s.fn.NewBlock("")
		elseBlock := s.fn.NewBlock("")
		s.block.NewCondBr(cond, thenBlock, elseBlock)

		s.block = thenBlock
		arms = append(arms, arm{result: s.expression(clause.Expression), block: s.block})

		s.block = elseBlock
	}

	arms = append(arms, arm{result: s.expression(m.Default), block: s.block})

	merge := s.fn.NewBlock("")
	incomings := make([]*ir.Incoming, len(arms))
	for i, a := range arms {
		a.block.NewBr(merge)
		incomings[i] = ir.NewIncoming(a.result, a.block)
	}

	s.block = merge
	return merge.NewPhi(incomings...)
}

// cstr interns a NUL-terminated string constant and returns a pointer
// to its first byte.
func (g *generator) cstr(raw string) constant.Constant {
	if ptr, ok := g.strs[raw]; ok {
		return ptr
	}

	terminated := raw + "\x00"
	arrTyp := types.NewArray(uint64(len(terminated)), types.I8)

	global := g.module.NewGlobalDef(
		fmt.Sprintf(".str.%d", g.strCount),
		constant.NewCharArrayFromString(terminated),
	)
	global.Linkage = enum.LinkagePrivate
	g.strCount++

	zero := constant.NewInt(types.I32, 0)
	ptr := constant.NewGetElementPtr(arrTyp, global, zero, zero)
	g.strs[raw] = ptr
	return ptr
}
