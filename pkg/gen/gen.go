package gen

import (
	"github.com/kartiknair/math/pkg/ast"
	"github.com/kartiknair/math/pkg/gen/llvm"
)

// LLVM generates textual LLVM IR for an analyzed program.
func LLVM(program *ast.Program) string {
	return llvm.Gen(program)
}
