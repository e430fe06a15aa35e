package render

import (
	"strings"
	"testing"
)

func TestRewriteAddressesRowAndCellTags(t *testing.T) {
	sheet := `<sheetData><row r="3"><c r="B3"><v>1</v></c></row></sheetData>`
	out, err := RewriteAddresses(sheet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `{{col_offset_reset}}{{set_row_inline 3}}{{_r}}`) {
		t.Fatalf("output missing rewritten row address: %s", out)
	}
	if !strings.Contains(out, `{{set_col_inline 2}}{{_cr}}`) {
		t.Fatalf("output missing rewritten cell address: %s", out)
	}
	if !strings.HasPrefix(out, "{{row_offset_reset}}") {
		t.Fatalf("output must be prefixed with a row_offset_reset: %s", out)
	}
}

func TestRewriteAddressesPreservesOtherAttributes(t *testing.T) {
	sheet := `<sheetData><row r="1" ht="20" customHeight="1"><c r="A1" s="4"><v>1</v></c></row></sheetData>`
	out, err := RewriteAddresses(sheet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `ht="20"`) || !strings.Contains(out, `customHeight="1"`) {
		t.Fatalf("output dropped non-address row attributes: %s", out)
	}
	if !strings.Contains(out, `s="4"`) {
		t.Fatalf("output dropped the cell's style attribute: %s", out)
	}
}

func TestRewriteAddressesEachBlockRowAxis(t *testing.T) {
	sheet := `<sheetData>{{#each items}}<row r="1"><c r="A1"><is><t>x</t></is></c></row>{{/each}}</sheetData>`
	out, err := RewriteAddresses(sheet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "{{row_offset_plus 1}}{{/each}}") {
		t.Fatalf("expected a row_offset_plus call (end row 1 minus start row 0) prepended to the each close, got: %s", out)
	}
}
