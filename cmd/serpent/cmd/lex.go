package cmd

import (
	"fmt"

	"github.com/abraun/serpent/internal/errors"
	"github.com/abraun/serpent/internal/lexer"
	"github.com/abraun/serpent/internal/token"
	"github.com/spf13/cobra"
)

var (
	lexEval     string
	lexShowPos  bool
	lexOnlyErrs bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a script and print the resulting tokens",
	Long: `Tokenize (lex) a program and print the resulting tokens, including
the synthesized NEWLINE/INDENT/DEDENT tokens.

Examples:
  serpent lex script.sp
  serpent lex -e "x = 1 + 2"
  serpent lex --show-pos script.sp`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline code instead of reading from a file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&lexOnlyErrs, "only-errors", false, "show only illegal tokens")
}

func runLex(cmd *cobra.Command, args []string) error {
	source, filename, err := readSource(lexEval, args)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("Tokenizing: %s\n", filename)
		fmt.Println("---")
	}

	l := lexer.New(source)
	count := 0
	for {
		tok := l.NextToken()
		if tok.Kind == token.ILLEGAL || tok.Kind == token.EOF || !lexOnlyErrs {
			count++
			printToken(tok)
		}
		if tok.Kind == token.EOF {
			break
		}
	}

	if lexErrs := l.Errors(); len(lexErrs) > 0 {
		for _, e := range lexErrs {
			ce := errors.NewCompilerError(e.Pos, e.Error(), source, filename)
			fmt.Println(ce.Format(1))
		}
		return fmt.Errorf("lexing failed with %d error(s)", len(lexErrs))
	}

	if verbose {
		fmt.Println("---")
		fmt.Printf("Total tokens: %d\n", count)
	}
	return nil
}

func printToken(tok token.Token) {
	out := fmt.Sprintf("%-12s %q", tok.Kind, tok.Literal)
	if lexShowPos {
		out += fmt.Sprintf(" @%s", tok.Pos)
	}
	fmt.Println(out)
}
