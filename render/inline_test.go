package render

import (
	"strings"
	"testing"
)

func TestInlineSharedStringsBasic(t *testing.T) {
	sheet := `<row><c r="A1" t="s"><v>0</v></c></row>`
	shared := []string{`<is><t>Hello</t></is>`}

	out, err := InlineSharedStrings(sheet, shared)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `t="inlineStr"`) {
		t.Fatalf("output missing inlineStr type: %s", out)
	}
	if !strings.Contains(out, `<is><t>Hello</t></is>`) {
		t.Fatalf("output missing the inlined fragment: %s", out)
	}
	if strings.Contains(out, `<v>0</v>`) {
		t.Fatalf("output still has the cached shared-string index: %s", out)
	}
}

func TestInlineSharedStringsPreservesFormula(t *testing.T) {
	sheet := `<row><c r="A1" t="s"><f>SUM(B1:B2)</f><v>0</v></c></row>`
	shared := []string{`<is><t>cached label</t></is>`}

	out, err := InlineSharedStrings(sheet, shared)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `<f>SUM(B1:B2)</f>`) {
		t.Fatalf("output dropped the formula: %s", out)
	}
}

func TestInlineSharedStringsSkipsNonSharedCells(t *testing.T) {
	sheet := `<row><c r="A1"><v>3.14</v></c></row>`
	out, err := InlineSharedStrings(sheet, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != sheet {
		t.Fatalf("output = %q, want unchanged input for a non-t=s cell", out)
	}
}

func TestInlineSharedStringsSkipsSelfClosingCells(t *testing.T) {
	sheet := `<row><c r="A1" s="2"/></row>`
	out, err := InlineSharedStrings(sheet, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<row><c r="A1" s="2"></c></row>`
	if out != want {
		t.Fatalf("output = %q, want %q (the token stream normalizes self-closing cells to an explicit open/close pair, same as Stage C)", out, want)
	}
}

func TestWrapLoopDelimiterRunsWrapsBareEachMarkers(t *testing.T) {
	in := `<is><t>{{#each items}}</t></is>`
	out := wrapLoopDelimiterRuns(in)
	if !strings.HasPrefix(out, "<is><r>") || !strings.HasSuffix(out, "</r></is>") {
		t.Fatalf("output = %q, want the <t> wrapped in <r>", out)
	}
}

func TestWrapLoopDelimiterRunsLeavesAlreadyWrapped(t *testing.T) {
	in := `<is><r><t>{{#each items}}</t></r></is>`
	out := wrapLoopDelimiterRuns(in)
	if out != in {
		t.Fatalf("output = %q, want unchanged when already wrapped", out)
	}
}

func TestWrapLoopDelimiterRunsLeavesOrdinaryText(t *testing.T) {
	in := `<is><t>plain text</t></is>`
	out := wrapLoopDelimiterRuns(in)
	if out != in {
		t.Fatalf("output = %q, want unchanged for non-loop-delimiter text", out)
	}
}
