package cmd

import (
	"fmt"
	"os"

	"github.com/abraun/serpent/internal/errors"
	"github.com/abraun/serpent/internal/interp"
	"github.com/abraun/serpent/internal/lexer"
	"github.com/abraun/serpent/internal/parser"
	"github.com/spf13/cobra"
)

var (
	runEval    string
	runDumpAST bool
	runTrace   bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Execute a script",
	Long: `Execute a program: lex, parse, and interpret it against a fresh
global environment, an empty in-memory filesystem, and the process's
own stdin/stdout.

Examples:
  serpent run script.sp
  serpent run -e "print(1 + 2)"
  serpent run --dump-ast script.sp`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEval, "eval", "e", "", "run inline code instead of reading from a file")
	runCmd.Flags().BoolVar(&runDumpAST, "dump-ast", false, "print the parsed AST before executing")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "print each top-level statement before executing it")
}

func runRun(cmd *cobra.Command, args []string) error {
	source, filename, err := readSource(runEval, args)
	if err != nil {
		return err
	}

	l := lexer.New(source)
	p := parser.New(l, source, filename)
	stmts, perr := p.ParseProgram()
	if perr != nil {
		if pe, ok := perr.(*errors.ParseError); ok {
			ce := errors.NewCompilerError(pe.Pos, pe.Message, source, filename)
			return fmt.Errorf("%s", ce.Format(1))
		}
		return perr
	}

	if runDumpAST {
		dumpStmts(stmts, 0)
	}
	if runTrace {
		for _, s := range stmts {
			fmt.Fprintf(os.Stderr, "trace: %T @%s\n", s, s.Pos())
		}
	}

	it := interp.New(os.Stdout, interp.WithStdin(os.Stdin))
	if rerr := it.Interpret(stmts); rerr != nil {
		if re, ok := rerr.(*errors.RuntimeError); ok {
			ce := re.ToCompilerError(source, filename)
			return fmt.Errorf("%s", ce.Format(1))
		}
		return rerr
	}
	return nil
}
