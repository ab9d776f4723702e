// # internal/reactive/walk.go
package reactive

import "jounce/internal/ast"

// walkExpr visits every identifier read inside an expression, descending into
// closures, blocks and nested markup.
func walkExpr(e ast.Expr, visit func(*ast.Identifier)) {
	switch e := e.(type) {
	case *ast.Identifier:
		visit(e)
	case *ast.BinaryExpr:
		walkExpr(e.Left, visit)
		walkExpr(e.Right, visit)
	case *ast.UnaryExpr:
		walkExpr(e.X, visit)
	case *ast.CallExpr:
		walkExpr(e.Callee, visit)
		for _, a := range e.Args {
			walkExpr(a, visit)
		}
	case *ast.FieldAccess:
		walkExpr(e.X, visit)
	case *ast.Closure:
		walkExpr(e.Body, visit)
	case *ast.BlockExpr:
		walkStmts(e.Block.Stmts, visit)
	case *ast.StructLit:
		for _, f := range e.Fields {
			walkExpr(f.Value, visit)
		}
	case *ast.MarkupElement:
		for _, a := range e.Attrs {
			walkExpr(a.Value, visit)
		}
		for _, c := range e.Children {
			walkExpr(c, visit)
		}
	case *ast.MarkupFragment:
		for _, c := range e.Children {
			walkExpr(c, visit)
		}
	}
}

func walkStmts(stmts []ast.Stmt, visit func(*ast.Identifier)) {
	for _, s := range stmts {
		switch s := s.(type) {
		case *ast.LetStmt:
			walkExpr(s.Value, visit)
		case *ast.AssignStmt:
			walkExpr(s.Target, visit)
			walkExpr(s.Value, visit)
		case *ast.ReturnStmt:
			if s.Value != nil {
				walkExpr(s.Value, visit)
			}
		case *ast.IfStmt:
			walkExpr(s.Cond, visit)
			walkStmts(s.Then.Stmts, visit)
			switch e := s.Else.(type) {
			case *ast.Block:
				walkStmts(e.Stmts, visit)
			case *ast.IfStmt:
				walkStmts([]ast.Stmt{e}, visit)
			}
		case *ast.MatchStmt:
			walkExpr(s.Subject, visit)
			for _, arm := range s.Arms {
				walkExpr(arm.Body, visit)
			}
		case *ast.ExprStmt:
			walkExpr(s.X, visit)
		case *ast.Block:
			walkStmts(s.Stmts, visit)
		}
	}
}
