package mathtext

import (
	"testing"

	"github.com/gaurav-prasanna/flareconv/core"
)

func TestContainsMathNotation(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"plain prose about widgets", false},
		{"Click Save to continue.", false},
		{"$x + y$", true},
		{`\(a+b\)`, true},
		{"<math><mi>x</mi></math>", true},
		{"<msup><mi>x</mi><mn>2</mn></msup>", true},
		{"tolerance of 1.5e-3 volts", true},
		{"area in m<sup>2</sup>", true},
		{"H<sub>2</sub>O", true},
		{"a ≤ b", true},
		{"Δt over the interval", true},
		{"", false},
	}
	for _, tt := range tests {
		if got := ContainsMathNotation(tt.in); got != tt.want {
			t.Errorf("ContainsMathNotation(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestContainsMathNotationIsPure(t *testing.T) {
	in := "value 2.5e-3 here"
	first := ContainsMathNotation(in)
	second := ContainsMathNotation(in)
	if first != second {
		t.Fatalf("predicate changed answer between calls: %v then %v", first, second)
	}
}

func TestConvertNoNotation(t *testing.T) {
	in := "nothing mathematical here"
	got, warnings := Convert(in, core.MathLaTeX)
	if got != in {
		t.Fatalf("Convert changed plain text: %q", got)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestConvertMathML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		conv core.MathConvention
		want string
	}{
		{
			name: "superscript latex",
			in:   "<math><msup><mi>x</mi><mn>2</mn></msup></math>",
			conv: core.MathLaTeX,
			want: "$x^{2}$",
		},
		{
			name: "superscript asciimath",
			in:   "<math><msup><mi>x</mi><mn>2</mn></msup></math>",
			conv: core.MathAsciiMath,
			want: "stem:[x^(2)]",
		},
		{
			name: "fraction latex",
			in:   "<math><mfrac><mi>a</mi><mi>b</mi></mfrac></math>",
			conv: core.MathLaTeX,
			want: `$\frac{a}{b}$`,
		},
		{
			name: "fraction asciimath",
			in:   "<math><mfrac><mi>a</mi><mi>b</mi></mfrac></math>",
			conv: core.MathAsciiMath,
			want: "stem:[(a)/(b)]",
		},
		{
			name: "sqrt latex",
			in:   "<math><msqrt><mi>x</mi></msqrt></math>",
			conv: core.MathLaTeX,
			want: `$\sqrt{x}$`,
		},
		{
			name: "subscript latex",
			in:   "<math><msub><mi>a</mi><mn>0</mn></msub></math>",
			conv: core.MathLaTeX,
			want: "$a_{0}$",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := Convert(tt.in, tt.conv)
			if got != tt.want {
				t.Fatalf("Convert(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if len(warnings) != 0 {
				t.Fatalf("unexpected warnings: %v", warnings)
			}
		})
	}
}

func TestConvertUnknownMathElement(t *testing.T) {
	_, warnings := Convert("<math><munder><mi>x</mi></munder></math>", core.MathLaTeX)
	if len(warnings) == 0 {
		t.Fatal("expected a warning for the unknown element")
	}
}

func TestConvertScientificNotation(t *testing.T) {
	got, _ := Convert("tolerance 4.7e-3 volts", core.MathLaTeX)
	want := `tolerance $4.7 \times 10^{-3}$ volts`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	got, _ = Convert("tolerance 4.7e-3 volts", core.MathAsciiMath)
	want = "tolerance stem:[4.7 xx 10^(-3)] volts"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestConvertDelimitedFormulaKeepsBody(t *testing.T) {
	got, _ := Convert("error is $1.5e3$ at most", core.MathLaTeX)
	if got != "error is $1.5e3$ at most" {
		t.Fatalf("got %q", got)
	}

	// Notation outside the formula still converts.
	got, _ = Convert("error is $1.5e3$ at most, 2e6 elsewhere", core.MathLaTeX)
	want := `error is $1.5e3$ at most, $2 \times 10^{6}$ elsewhere`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	got, _ = Convert("error is $1.5e3$ at most", core.MathAsciiMath)
	if got != "error is stem:[1.5e3] at most" {
		t.Fatalf("got %q", got)
	}
}

func TestConvertSupSub(t *testing.T) {
	got, _ := Convert("H<sub>2</sub>O", core.MathLaTeX)
	if got != "H_2O" {
		t.Fatalf("got %q, want %q", got, "H_2O")
	}

	got, _ = Convert("x<sup>10</sup>", core.MathLaTeX)
	if got != "x^{10}" {
		t.Fatalf("got %q, want %q", got, "x^{10}")
	}
}

func TestConvertLatexDelimiters(t *testing.T) {
	got, _ := Convert(`compare \(a+b\) here`, core.MathLaTeX)
	if got != "compare $a+b$ here" {
		t.Fatalf("got %q", got)
	}

	got, _ = Convert("$a+b$", core.MathAsciiMath)
	if got != "stem:[a+b]" {
		t.Fatalf("got %q", got)
	}
}

func TestConvertUnicodeSymbols(t *testing.T) {
	got, _ := Convert("a ≤ b", core.MathLaTeX)
	if got != `a \le  b` {
		t.Fatalf("got %q", got)
	}

	got, _ = Convert("3 × 4", core.MathAsciiMath)
	if got != "3  xx  4" {
		t.Fatalf("got %q", got)
	}
}
