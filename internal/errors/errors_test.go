package errors

import (
	"strings"
	"testing"

	"github.com/abraun/serpent/internal/token"
)

func TestCompilerErrorFormat(t *testing.T) {
	tests := []struct {
		name        string
		pos         token.Position
		message     string
		source      string
		file        string
		wantContain []string
	}{
		{
			name:    "with file",
			pos:     token.Position{Line: 1, Column: 5},
			message: "undefined name 'x'",
			source:  "y = x + 1",
			file:    "test.sp",
			wantContain: []string{
				"Error in test.sp:1:5",
				"   1 | y = x + 1",
				"^",
				"undefined name 'x'",
			},
		},
		{
			name:    "without file",
			pos:     token.Position{Line: 2, Column: 1},
			message: "unexpected token",
			source:  "a = 1\nb c",
			file:    "",
			wantContain: []string{
				"Error at line 2:1",
				"   2 | b c",
				"^",
				"unexpected token",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewCompilerError(tt.pos, tt.message, tt.source, tt.file)
			got := err.Format(1)
			for _, want := range tt.wantContain {
				if !strings.Contains(got, want) {
					t.Errorf("Format() missing %q in:\n%s", want, got)
				}
			}
		})
	}
}

func TestRuntimeErrorToCompilerError(t *testing.T) {
	re := NewRuntimeError(NameError, token.Position{Line: 1, Column: 1}, "name %q is not defined", "x")
	ce := re.ToCompilerError("x", "<eval>")
	if !strings.Contains(ce.Format(0), "NameError") {
		t.Errorf("expected NameError in formatted output, got %s", ce.Format(0))
	}
}
