package cmd

import (
	"fmt"
	"strings"

	"github.com/abraun/serpent/internal/ast"
	"github.com/abraun/serpent/internal/errors"
	"github.com/abraun/serpent/internal/lexer"
	"github.com/abraun/serpent/internal/parser"
	"github.com/spf13/cobra"
)

var parseEval string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a script and display its abstract syntax tree",
	Long: `Parse source code and display the Abstract Syntax Tree (AST).

If no file is provided, reads from stdin. Use -e to parse a single
expression-or-statement snippet from the command line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline code instead of reading from a file")
}

func runParse(cmd *cobra.Command, args []string) error {
	source, filename, err := readSource(parseEval, args)
	if err != nil {
		return err
	}

	l := lexer.New(source)
	p := parser.New(l, source, filename)
	stmts, perr := p.ParseProgram()
	if perr != nil {
		if pe, ok := perr.(*errors.ParseError); ok {
			ce := errors.NewCompilerError(pe.Pos, pe.Message, source, filename)
			fmt.Println(ce.Format(1))
		} else {
			fmt.Println(perr.Error())
		}
		return fmt.Errorf("parsing failed")
	}

	for _, s := range stmts {
		dumpStmt(s, 0)
	}
	return nil
}

func indent(n int) string { return strings.Repeat("  ", n) }

func dumpStmts(stmts []ast.Stmt, depth int) {
	for _, s := range stmts {
		dumpStmt(s, depth)
	}
}

func dumpStmt(s ast.Stmt, depth int) {
	pre := indent(depth)
	switch n := s.(type) {
	case *ast.ExprStmt:
		fmt.Printf("%sExprStmt\n", pre)
		dumpExpr(n.X, depth+1)
	case *ast.FuncDef:
		fmt.Printf("%sFuncDef %s(%s)\n", pre, n.Name, paramList(n.Params))
		dumpStmts(n.Body, depth+1)
	case *ast.ClassDef:
		if n.Superclass != "" {
			fmt.Printf("%sClassDef %s(%s)\n", pre, n.Name, n.Superclass)
		} else {
			fmt.Printf("%sClassDef %s\n", pre, n.Name)
		}
		for _, m := range n.Methods {
			dumpStmt(m, depth+1)
		}
	case *ast.If:
		fmt.Printf("%sIf\n", pre)
		dumpExpr(n.Cond, depth+1)
		fmt.Printf("%sThen:\n", pre)
		dumpStmts(n.Then, depth+1)
		for _, e := range n.Elifs {
			fmt.Printf("%sElif:\n", pre)
			dumpExpr(e.Cond, depth+1)
			dumpStmts(e.Body, depth+1)
		}
		if len(n.Else) > 0 {
			fmt.Printf("%sElse:\n", pre)
			dumpStmts(n.Else, depth+1)
		}
	case *ast.While:
		fmt.Printf("%sWhile\n", pre)
		dumpExpr(n.Cond, depth+1)
		dumpStmts(n.Body, depth+1)
	case *ast.ForIn:
		fmt.Printf("%sForIn %s\n", pre, n.Name)
		dumpExpr(n.Iterable, depth+1)
		dumpStmts(n.Body, depth+1)
	case *ast.Return:
		fmt.Printf("%sReturn\n", pre)
		if n.Value != nil {
			dumpExpr(n.Value, depth+1)
		}
	case *ast.Pass:
		fmt.Printf("%sPass\n", pre)
	case *ast.Break:
		fmt.Printf("%sBreak\n", pre)
	case *ast.Continue:
		fmt.Printf("%sContinue\n", pre)
	default:
		fmt.Printf("%s%T\n", pre, s)
	}
}

func dumpExpr(e ast.Expr, depth int) {
	pre := indent(depth)
	switch n := e.(type) {
	case *ast.Literal:
		fmt.Printf("%sLiteral %#v\n", pre, n.Value)
	case *ast.ListLit:
		fmt.Printf("%sListLit\n", pre)
		for _, el := range n.Elements {
			dumpExpr(el, depth+1)
		}
	case *ast.TupleLit:
		fmt.Printf("%sTupleLit\n", pre)
		for _, el := range n.Elements {
			dumpExpr(el, depth+1)
		}
	case *ast.SetLit:
		fmt.Printf("%sSetLit\n", pre)
		for _, el := range n.Elements {
			dumpExpr(el, depth+1)
		}
	case *ast.DictLit:
		fmt.Printf("%sDictLit\n", pre)
		for i := range n.Keys {
			dumpExpr(n.Keys[i], depth+1)
			dumpExpr(n.Values[i], depth+1)
		}
	case *ast.Variable:
		fmt.Printf("%sVariable %s\n", pre, n.Name)
	case *ast.SuperRef:
		fmt.Printf("%sSuperRef\n", pre)
	case *ast.Grouping:
		fmt.Printf("%sGrouping\n", pre)
		dumpExpr(n.Expr, depth+1)
	case *ast.Unary:
		fmt.Printf("%sUnary %s\n", pre, n.Op)
		dumpExpr(n.Right, depth+1)
	case *ast.Binary:
		fmt.Printf("%sBinary %s\n", pre, n.Op)
		dumpExpr(n.Left, depth+1)
		dumpExpr(n.Right, depth+1)
	case *ast.Logical:
		fmt.Printf("%sLogical %s\n", pre, n.Op)
		dumpExpr(n.Left, depth+1)
		dumpExpr(n.Right, depth+1)
	case *ast.Call:
		fmt.Printf("%sCall\n", pre)
		dumpExpr(n.Callee, depth+1)
		for _, a := range n.Args {
			if a.Name != "" {
				fmt.Printf("%s  %s=\n", pre, a.Name)
			}
			dumpExpr(a.Value, depth+2)
		}
	case *ast.IndexGet:
		fmt.Printf("%sIndexGet\n", pre)
		dumpExpr(n.Object, depth+1)
		dumpExpr(n.Index, depth+1)
	case *ast.AttributeGet:
		fmt.Printf("%sAttributeGet .%s\n", pre, n.Name)
		dumpExpr(n.Object, depth+1)
	case *ast.Assign:
		fmt.Printf("%sAssign\n", pre)
		dumpExpr(n.Target, depth+1)
		dumpExpr(n.Value, depth+1)
	case *ast.AugAssign:
		fmt.Printf("%sAugAssign %s=\n", pre, n.Op)
		dumpExpr(n.Target, depth+1)
		dumpExpr(n.Value, depth+1)
	case *ast.Lambda:
		fmt.Printf("%sLambda(%s)\n", pre, paramList(n.Params))
		dumpExpr(n.Body, depth+1)
	default:
		fmt.Printf("%s%T\n", pre, e)
	}
}

func paramList(params []ast.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		switch p.Kind {
		case ast.ParamStar:
			parts[i] = "*" + p.Name
		case ast.ParamDoubleStar:
			parts[i] = "**" + p.Name
		case ast.ParamOptional:
			parts[i] = p.Name + "=..."
		default:
			parts[i] = p.Name
		}
	}
	return strings.Join(parts, ", ")
}
