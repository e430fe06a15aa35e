package xl

import (
	"strings"
	"testing"
)

func TestCleanSheetNameStripsForbiddenCharacters(t *testing.T) {
	got := CleanSheetName(`Q1/Results[final]*`)
	want := "Q1Resultsfinal"
	if got != want {
		t.Fatalf("CleanSheetName = %q, want %q", got, want)
	}
}

func TestCleanSheetNameClampsLength(t *testing.T) {
	long := "123456789012345678901234567890ABCDEF"
	got := CleanSheetName(long)
	if len(got) != 31 {
		t.Fatalf("len(CleanSheetName(long)) = %d, want 31", len(got))
	}
	if got != long[:31] {
		t.Fatalf("CleanSheetName(long) = %q, want the first 31 runes", got)
	}
}

func TestUniqueSheetNameAppendsSuffix(t *testing.T) {
	got := uniqueSheetName("Report", 2, []string{"Report"})
	if got != "Report (1)" {
		t.Fatalf("uniqueSheetName = %q, want %q", got, "Report (1)")
	}
}

func TestUniqueSheetNameSkipsUsedSuffixes(t *testing.T) {
	got := uniqueSheetName("Report", 2, []string{"Report", "Report (1)"})
	if got != "Report (2)" {
		t.Fatalf("uniqueSheetName = %q, want %q", got, "Report (2)")
	}
}

func twoSheetWorkbook() map[string][]byte {
	return map[string][]byte{
		"xl/workbook.xml": []byte(`<workbook><sheets>` +
			`<sheet name="First" sheetId="1" r:id="rId1"/>` +
			`<sheet name="Second" sheetId="2" r:id="rId2"/>` +
			`</sheets></workbook>`),
		"xl/_rels/workbook.xml.rels": []byte(`<Relationships>` +
			`<Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.xml"/>` +
			`<Relationship Id="rId2" Type="worksheet" Target="worksheets/sheet2.xml"/>` +
			`</Relationships>`),
		"xl/worksheets/sheet1.xml":        []byte(`<worksheet/>`),
		"xl/worksheets/sheet2.xml":        []byte(`<worksheet/>`),
		"[Content_Types].xml":             []byte(`<Types><Override PartName="/xl/worksheets/sheet1.xml" ContentType="x"/><Override PartName="/xl/worksheets/sheet2.xml" ContentType="x"/></Types>`),
	}
}

func TestDeleteSheetRemovesEveryTrace(t *testing.T) {
	parts := twoSheetWorkbook()
	if err := DeleteSheet(parts, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := parts["xl/worksheets/sheet1.xml"]; ok {
		t.Fatalf("sheet1.xml should have been removed")
	}
	wb := string(parts["xl/workbook.xml"])
	if strings.Contains(wb, `sheetId="1"`) {
		t.Fatalf("workbook.xml still references sheet 1: %s", wb)
	}
	if !strings.Contains(wb, `sheetId="2"`) {
		t.Fatalf("workbook.xml lost the surviving sheet: %s", wb)
	}
	rels := string(parts["xl/_rels/workbook.xml.rels"])
	if strings.Contains(rels, "sheet1.xml") {
		t.Fatalf("relationship for sheet1 should have been removed: %s", rels)
	}
	ct := string(parts["[Content_Types].xml"])
	if strings.Contains(ct, "sheet1.xml") {
		t.Fatalf("content types override for sheet1 should have been removed: %s", ct)
	}
}

func TestDeleteSheetRefusesLastSheet(t *testing.T) {
	parts := map[string][]byte{
		"xl/workbook.xml": []byte(`<workbook><sheets><sheet name="Only" sheetId="1" r:id="rId1"/></sheets></workbook>`),
	}
	if err := DeleteSheet(parts, 1); err == nil {
		t.Fatalf("expected an error when deleting the last remaining sheet")
	}
}

func TestRenameSheetAvoidsCollision(t *testing.T) {
	parts := twoSheetWorkbook()
	if err := RenameSheet(parts, 2, "First"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wb := string(parts["xl/workbook.xml"])
	if !strings.Contains(wb, `name="First (1)"`) {
		t.Fatalf("expected sheet 2 renamed to a collision-free variant, got: %s", wb)
	}
}

func TestRenameSheetSkipsWhenCleanedIsEmpty(t *testing.T) {
	parts := twoSheetWorkbook()
	before := string(parts["xl/workbook.xml"])
	if err := RenameSheet(parts, 1, "///***"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(parts["xl/workbook.xml"]) != before {
		t.Fatalf("expected no change when the cleaned name is empty")
	}
}

func TestHideSheetSetsState(t *testing.T) {
	parts := twoSheetWorkbook()
	if err := HideSheet(parts, 1, "veryHidden"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wb := string(parts["xl/workbook.xml"])
	if !strings.Contains(wb, `state="veryHidden"`) {
		t.Fatalf("expected sheet 1 marked veryHidden, got: %s", wb)
	}
}

func TestHideSheetRefusesHidingEverySheet(t *testing.T) {
	parts := twoSheetWorkbook()
	if err := HideSheet(parts, 1, "hidden"); err != nil {
		t.Fatalf("unexpected error hiding the first sheet: %v", err)
	}
	if err := HideSheet(parts, 2, "hidden"); err == nil {
		t.Fatalf("expected an error when hiding the last visible sheet")
	}
}

func TestSheetNumberFromPath(t *testing.T) {
	n, ok := SheetNumberFromPath("xl/worksheets/sheet12.xml")
	if !ok || n != 12 {
		t.Fatalf("SheetNumberFromPath = (%d, %v), want (12, true)", n, ok)
	}
	if _, ok := SheetNumberFromPath("xl/worksheets/_rels/sheet1.xml.rels"); ok {
		t.Fatalf("expected the _rels path to be rejected")
	}
	if _, ok := SheetNumberFromPath("xl/workbook.xml"); ok {
		t.Fatalf("expected an unrelated path to be rejected")
	}
}
