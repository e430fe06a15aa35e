package render

import (
	"strconv"

	"github.com/sheetcraft/xlstpl/colref"
)

// EachFrame tracks one open {{#each}} block while Stage C scans the sheet.
// Its axis starts undetermined and is promoted by the first structural
// element (<row> or <c>) the scanner sees while the frame is on top of the
// stack.
type EachFrame struct {
	Axis             string // "none", "row", "col"
	StartRow, EndRow uint
	StartCol, EndCol uint
	Var              string
}

// MergeRecord is one pending merged range, keyed by its fully-resolved
// "A1:B2"-shaped reference string.
type MergeRecord struct {
	Ref string
}

// HyperlinkRecord is one pending hyperlink, collected by the hyperlink
// helper and drained by the post-processor.
type HyperlinkRecord struct {
	Ref, Location, Display string
}

// ImageRecord is one embedded image collected by the img helper and
// realized into a drawing anchor, a relationship, and a media part by the
// drawing finalizer.
type ImageRecord struct {
	Col, Row      uint
	Base64        string
	Width, Height uint
	HasWidth      bool
	HasHeight     bool
	RID           string
}

// SheetOps accumulates pending workbook-level mutations across every
// sheet's render; it is shared (not per-sheet) because deleting/renaming/
// hiding sheet N must be visible regardless of which sheet's helpers
// requested it.
type SheetOps struct {
	Delete map[int]bool
	Rename map[int]string
	Hide   map[int]string
}

// NewSheetOps returns an empty registry.
func NewSheetOps() *SheetOps {
	return &SheetOps{
		Delete: map[int]bool{},
		Rename: map[int]string{},
		Hide:   map[int]string{},
	}
}

// Context is the cooperative mutable render state for exactly one sheet.
// It is created fresh per sheet (§5: "a fresh one allocated per sheet") and
// threaded through every registered raymond helper for that sheet's render.
type Context struct {
	SheetNum  int
	SheetPath string

	RowInline uint
	ColInline uint
	RowOffset int
	ColOffset int

	Frames     []*EachFrame
	Merges     []MergeRecord
	Hyperlinks []HyperlinkRecord
	Images     []ImageRecord

	Ops *SheetOps
}

// NewContext allocates render state for one sheet. ops is shared across
// every sheet processed in the same Render call.
func NewContext(sheetNum int, sheetPath string, ops *SheetOps) *Context {
	return &Context{
		SheetNum:  sheetNum,
		SheetPath: sheetPath,
		Ops:       ops,
	}
}

// --- row/col offset and inline-position bookkeeping (helper table §4.4) ---

func (c *Context) RowOffsetPlus(n int) { c.RowOffset += n }
func (c *Context) RowOffsetReset()     { c.RowOffset = 0 }
func (c *Context) GetRowOffset() string {
	return strconv.Itoa(c.RowOffset)
}
func (c *Context) SetRowInline(n uint) { c.RowInline = n }

// R emits the current absolute row number: row_inline + row_offset.
func (c *Context) R() string {
	return strconv.Itoa(int(c.RowInline) + c.RowOffset)
}

func (c *Context) ColOffsetPlus(n int) { c.ColOffset += n }
func (c *Context) ColOffsetReset()     { c.ColOffset = 0 }
func (c *Context) GetColOffset() string {
	return strconv.Itoa(c.ColOffset)
}
func (c *Context) SetColInline(n uint) { c.ColInline = n }

// C emits the column letters for col_inline + col_offset.
func (c *Context) C() string {
	idx := int(c.ColInline) + c.ColOffset
	if idx < 1 {
		idx = 1
	}
	return colref.IndexToName(uint(idx))
}

// CR emits "{letters}{row}" for the given column/row, or the current
// inline position plus offsets if either argument is absent. col may be a
// string of letters, a numeric index, or nil; row may be a number or nil.
func (c *Context) CR(col, row interface{}) string {
	var colLetters string
	switch v := col.(type) {
	case nil:
		colLetters = c.C()
	case string:
		colLetters = colref.Name(v, uint(c.ColOffset))
	case int:
		colLetters = colref.IndexToName(uint(v + c.ColOffset))
	case float64:
		colLetters = colref.IndexToName(uint(int(v) + c.ColOffset))
	default:
		colLetters = c.C()
	}

	var rowNum int
	switch v := row.(type) {
	case nil:
		rowNum = int(c.RowInline) + c.RowOffset
	case int:
		rowNum = v + c.RowOffset
	case float64:
		rowNum = int(v) + c.RowOffset
	case uint:
		rowNum = int(v) + c.RowOffset
	default:
		rowNum = int(c.RowInline) + c.RowOffset
	}
	return colLetters + strconv.Itoa(rowNum)
}

// --- each-block frame stack (§4.2 Stage C, §9 loop-axis inference) ---

func (c *Context) PushFrame(varName string) *EachFrame {
	f := &EachFrame{Axis: "none", StartRow: c.RowInline, StartCol: c.ColInline, Var: varName}
	c.Frames = append(c.Frames, f)
	return f
}

func (c *Context) TopFrame() *EachFrame {
	if len(c.Frames) == 0 {
		return nil
	}
	return c.Frames[len(c.Frames)-1]
}

// PromoteAxis promotes the top frame to kind ("row" or "col") if it is
// still undetermined. A <row> always wins even over a prior <c>-based
// guess, matching §9: "Any <row> promotes to row-axis (possibly
// overriding a prior col-axis guess)".
func (c *Context) PromoteAxis(kind string) {
	f := c.TopFrame()
	if f == nil {
		return
	}
	if kind == "row" {
		f.Axis = "row"
		return
	}
	if f.Axis == "none" {
		f.Axis = "col"
	}
}

// PopFrame removes the top frame, recording its end position, and returns
// it so the caller can decide what offset-adjust helper call to prepend.
func (c *Context) PopFrame() *EachFrame {
	f := c.TopFrame()
	if f == nil {
		return nil
	}
	f.EndRow = c.RowInline
	f.EndCol = c.ColInline
	c.Frames = c.Frames[:len(c.Frames)-1]
	return f
}

// --- collected records ---

func (c *Context) AddMerge(ref string) {
	c.Merges = append(c.Merges, MergeRecord{Ref: ref})
}

func (c *Context) AddHyperlink(ref, location, display string) {
	c.Hyperlinks = append(c.Hyperlinks, HyperlinkRecord{Ref: ref, Location: location, Display: display})
}

func (c *Context) AddImage(rec ImageRecord) {
	c.Images = append(c.Images, rec)
}
