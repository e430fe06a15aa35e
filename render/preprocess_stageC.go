package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sheetcraft/xlstpl/colref"
)

// stageCFrame is Stage C's own each-block bookkeeping. It intentionally
// does not reuse render.Context's EachFrame/offset fields: this pass runs
// once, ahead of time, to generate the Handlebars source text itself
// (including the row_offset_plus/col_offset_plus calls that will run much
// later, during raymond's Exec); Context's row/col offsets only exist once
// that generated text is actually evaluated.
type stageCFrame struct {
	axis             string // "none", "row", "col"
	startRow, endRow uint
	startCol, endCol uint
}

// RewriteAddresses implements Stage C (§4.2): a streaming XML pass over
// one sheet's part that rewrites every <row r="N"> and <c r="ColN"> open
// tag to carry dynamic-coordinate helper pipelines, stitches template
// expressions that formatting runs split apart, and tracks each-block
// axis inference via the first structural element encountered inside a
// loop.
//
// Grounded on original_source/src/utils.rs's merge_handlebars_in_xml,
// using encoding/xml's Decoder.Token() as the streaming tokenizer (the
// pack's only XML library, adnsv/srw, is write-only — see SPEC_FULL.md's
// DOMAIN STACK section).
func RewriteAddresses(sheetXML string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(sheetXML))
	dec.Strict = false

	var out strings.Builder
	out.WriteString("{{row_offset_reset}}")

	var frames []*stageCFrame
	braceDepth := 0
	exprOpen := false
	var currentRow, currentCol uint

	pushFrame := func() {
		frames = append(frames, &stageCFrame{axis: "none", startRow: currentRow, startCol: currentCol})
	}
	topFrame := func() *stageCFrame {
		if len(frames) == 0 {
			return nil
		}
		return frames[len(frames)-1]
	}
	promote := func(kind string) {
		f := topFrame()
		if f == nil {
			return
		}
		if kind == "row" {
			f.axis = "row"
		} else if f.axis == "none" {
			f.axis = "col"
		}
	}
	popFrame := func() *stageCFrame {
		f := topFrame()
		if f == nil {
			return nil
		}
		f.endRow, f.endCol = currentRow, currentCol
		frames = frames[:len(frames)-1]
		return f
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("stage C: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if exprOpen {
				// tags encountered mid-expression are dropped; their text
				// content (emitted as separate CharData tokens) is kept.
				continue
			}
			switch t.Name.Local {
			case "row":
				n, rest := splitRowAttrs(t.Attr)
				currentRow = n
				if topFrame() != nil {
					promote("row")
				}
				out.WriteString(fmt.Sprintf(`<row r="{{col_offset_reset}}{{set_row_inline %d}}{{_r}}"%s>`, n, rest))
			case "c":
				letters, rest := splitCellAttrs(t.Attr)
				colIdx := colref.Index(letters)
				currentCol = colIdx
				if topFrame() != nil {
					promote("col")
				}
				out.WriteString(fmt.Sprintf(`<c r="{{set_col_inline %d}}{{_cr}}"%s>`, colIdx, rest))
			default:
				out.WriteString(renderStartTag(t))
			}

		case xml.EndElement:
			if exprOpen {
				continue
			}
			out.WriteString("</" + t.Name.Local + ">")

		case xml.CharData:
			text := string(t)
			for _, r := range text {
				switch r {
				case '{':
					braceDepth++
				case '}':
					if braceDepth > 0 {
						braceDepth--
					}
				}
			}
			exprOpen = braceDepth > 0

			if idx := strings.Index(text, "{{#each"); idx >= 0 {
				pushFrame()
			}
			if idx := strings.Index(text, "{{/each}}"); idx >= 0 {
				if f := popFrame(); f != nil {
					switch f.axis {
					case "row":
						text = fmt.Sprintf("{{row_offset_plus %d}}", int(f.endRow)-int(f.startRow)) + text
					case "col":
						text = fmt.Sprintf("{{col_offset_plus %d}}", int(f.endCol)-int(f.startCol)) + text
					}
				}
			}
			out.WriteString(text)
		}
	}

	return out.String(), nil
}

// splitRowAttrs pulls the numeric r= value off a <row> start tag and
// re-serializes every other attribute unchanged.
func splitRowAttrs(attrs []xml.Attr) (rowNum uint, rest string) {
	var b strings.Builder
	for _, a := range attrs {
		if a.Name.Local == "r" {
			if n, err := strconv.ParseUint(a.Value, 10, 32); err == nil {
				rowNum = uint(n)
			}
			continue
		}
		b.WriteString(fmt.Sprintf(` %s="%s"`, a.Name.Local, xml.EscapeString(a.Value)))
	}
	return rowNum, b.String()
}

// splitCellAttrs pulls the column letters off a <c r="ColN"> start tag's
// r= value and re-serializes every other attribute unchanged.
func splitCellAttrs(attrs []xml.Attr) (letters string, rest string) {
	var b strings.Builder
	for _, a := range attrs {
		if a.Name.Local == "r" {
			l, _, ok := colref.Split(a.Value)
			if ok {
				letters = l
			}
			continue
		}
		b.WriteString(fmt.Sprintf(` %s="%s"`, a.Name.Local, xml.EscapeString(a.Value)))
	}
	if letters == "" {
		letters = "A"
	}
	return letters, b.String()
}

// renderStartTag reconstructs a pass-through start tag from its parsed
// form. Namespaced attributes (xml.Name.Space non-empty) are re-prefixed
// using the original-looking "ns:local" shape, which is sufficient for the
// handful of r:id/xr:uid-style attributes this pipeline ever touches on
// pass-through elements.
func renderStartTag(t xml.StartElement) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(qualifiedName(t.Name))
	for _, a := range t.Attr {
		b.WriteString(" ")
		b.WriteString(qualifiedName(a.Name))
		b.WriteString(`="`)
		b.WriteString(xml.EscapeString(a.Value))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	return b.String()
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
