package render

import (
	"strings"
	"testing"

	"github.com/sheetcraft/xlstpl/internal/sentinel"
)

func TestPostProcessDropsRemovedRows(t *testing.T) {
	sheet := `<sheetData>` +
		`<row r="1"><c r="A1"><is><t>keep</t></is></c></row>` +
		`<row r="2"><c r="A2"><is><t>` + sentinel.RemoveRow + `</t></is></c></row>` +
		`</sheetData>`

	out, err := PostProcess(sheet, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, sentinel.RemoveRow) {
		t.Fatalf("output still contains the remove-row sentinel: %s", out)
	}
	if strings.Count(out, "<row") != 1 {
		t.Fatalf("output = %s, want exactly one surviving row", out)
	}
	if !strings.Contains(out, "keep") {
		t.Fatalf("output dropped the surviving row's content: %s", out)
	}
}

func TestPostProcessRebuildsNumberCell(t *testing.T) {
	sheet := `<sheetData><row r="1"><c r="A1" t="inlineStr"><is><t>` +
		sentinel.ToNumber + `42.5</t></is></c></row></sheetData>`

	out, err := PostProcess(sheet, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "<v>42.5</v>") {
		t.Fatalf("output missing rebuilt numeric value: %s", out)
	}
	if strings.Contains(out, `t="inlineStr"`) {
		t.Fatalf("output still carries the inlineStr type attribute: %s", out)
	}
}

func TestPostProcessRebuildsFormulaCell(t *testing.T) {
	sheet := `<sheetData><row r="1"><c r="A1" t="inlineStr"><is><t>` +
		sentinel.ToFormula + `SUM(A2:A3)</t></is></c></row></sheetData>`

	out, err := PostProcess(sheet, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "<f>SUM(A2:A3)</f>") {
		t.Fatalf("output missing rebuilt formula: %s", out)
	}
}

func TestPostProcessInjectsMergeCellsDedupedAndSorted(t *testing.T) {
	sheet := `<sheetData></sheetData><pageMargins/>`
	merges := []MergeRecord{{Ref: "B1:C1"}, {Ref: "A1:A2"}, {Ref: "B1:C1"}}

	out, err := PostProcess(sheet, merges, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<mergeCells count="2"><mergeCell ref="A1:A2"/><mergeCell ref="B1:C1"/></mergeCells>`
	if !strings.Contains(out, want) {
		t.Fatalf("output = %s, want to contain %s", out, want)
	}
}

func TestPostProcessInjectsHyperlinksBeforePageMargins(t *testing.T) {
	sheet := `<sheetData></sheetData><pageMargins left="0.7"/>`
	hyperlinks := []HyperlinkRecord{{Ref: "A1", Location: "Sheet2!A1", Display: "Go"}}

	out, err := PostProcess(sheet, nil, hyperlinks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hIdx := strings.Index(out, "<hyperlinks")
	pIdx := strings.Index(out, "<pageMargins")
	if hIdx < 0 || pIdx < 0 || hIdx > pIdx {
		t.Fatalf("expected <hyperlinks> to be inserted before <pageMargins>, got %s", out)
	}
}

func TestPostProcessInjectsHyperlinksFallbackBeforeWorksheetClose(t *testing.T) {
	sheet := `<worksheet><sheetData></sheetData></worksheet>`
	hyperlinks := []HyperlinkRecord{{Ref: "A1", Location: "Sheet2!A1", Display: "Go"}}

	out, err := PostProcess(sheet, nil, hyperlinks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hIdx := strings.Index(out, "<hyperlinks")
	wIdx := strings.Index(out, "</worksheet>")
	if hIdx < 0 || wIdx < 0 || hIdx > wIdx {
		t.Fatalf("expected <hyperlinks> to fall back to just before </worksheet>, got %s", out)
	}
}
