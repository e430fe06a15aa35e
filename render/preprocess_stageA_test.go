package render

import (
	"strings"
	"testing"
)

func TestExtractMergesAndHyperlinksBlockForm(t *testing.T) {
	sheet := `<worksheet><sheetData></sheetData>` +
		`<mergeCells count="1"><mergeCell ref="A1:B2"/></mergeCells>` +
		`<hyperlinks><hyperlink ref="C1" location="Sheet2!A1" display="go"/></hyperlinks>` +
		`</worksheet>`

	remaining, merges, hyperlinks := ExtractMergesAndHyperlinks(sheet)

	if len(merges) != 1 || merges[0].Ref != "A1:B2" {
		t.Fatalf("merges = %v", merges)
	}
	if len(hyperlinks) != 1 || hyperlinks[0].Ref != "C1" || hyperlinks[0].Location != "Sheet2!A1" || hyperlinks[0].Display != "go" {
		t.Fatalf("hyperlinks = %v", hyperlinks)
	}
	for _, forbidden := range []string{"<mergeCells", "<hyperlinks"} {
		if strings.Contains(remaining, forbidden) {
			t.Fatalf("remaining still contains %q: %s", forbidden, remaining)
		}
	}
}

func TestExtractMergesAndHyperlinksAbsentBlocks(t *testing.T) {
	sheet := `<worksheet><sheetData></sheetData></worksheet>`
	remaining, merges, hyperlinks := ExtractMergesAndHyperlinks(sheet)
	if remaining != sheet {
		t.Fatalf("remaining = %q, want unchanged input", remaining)
	}
	if merges != nil || hyperlinks != nil {
		t.Fatalf("expected no merges/hyperlinks, got %v / %v", merges, hyperlinks)
	}
}

func TestExtractMergesAndHyperlinksMultipleEntries(t *testing.T) {
	sheet := `<worksheet><sheetData></sheetData>` +
		`<mergeCells count="2"><mergeCell ref="A1:A2"/><mergeCell ref="B1:C1"/></mergeCells>` +
		`</worksheet>`
	_, merges, _ := ExtractMergesAndHyperlinks(sheet)
	if len(merges) != 2 || merges[0].Ref != "A1:A2" || merges[1].Ref != "B1:C1" {
		t.Fatalf("merges = %v", merges)
	}
}

