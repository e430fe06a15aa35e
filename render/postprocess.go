package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sheetcraft/xlstpl/internal/sentinel"
)

// PostProcess implements §4.5: it buffers each rendered <row>'s text and
// only emits it once its close tag is seen, discarding rows tagged with
// the remove sentinel, rebuilding cells tagged number/formula into their
// final <v>/<f> form, and re-injecting the regenerated <mergeCells> and
// <hyperlinks> blocks at their canonical positions.
//
// Grounded on original_source/src/utils.rs's post_process_xml,
// process_number_cells, and process_formula_cells.
func PostProcess(sheetXML string, merges []MergeRecord, hyperlinks []HyperlinkRecord) (string, error) {
	withRows, err := processRows(sheetXML)
	if err != nil {
		return "", err
	}
	withMerges := injectMergeCells(withRows, merges)
	withHyperlinks := injectHyperlinks(withMerges, hyperlinks)
	return withHyperlinks, nil
}

// processRows walks every <row>...</row> (or self-closing <row/>) element,
// dropping rows that carry the remove-row sentinel and rebuilding number/
// formula cells in the ones that survive.
func processRows(sheetXML string) (string, error) {
	var out strings.Builder
	pos := 0
	for {
		idx := strings.Index(sheetXML[pos:], "<row")
		if idx < 0 {
			out.WriteString(sheetXML[pos:])
			break
		}
		idx += pos
		out.WriteString(sheetXML[pos:idx])

		tagEnd := strings.Index(sheetXML[idx:], ">")
		if tagEnd < 0 {
			out.WriteString(sheetXML[idx:])
			break
		}
		tagEnd += idx

		if sheetXML[tagEnd-1] == '/' {
			// self-closing empty row: nothing to inspect or rebuild.
			out.WriteString(sheetXML[idx : tagEnd+1])
			pos = tagEnd + 1
			continue
		}

		bodyStart := tagEnd + 1
		closeIdx := strings.Index(sheetXML[bodyStart:], "</row>")
		if closeIdx < 0 {
			out.WriteString(sheetXML[idx:])
			break
		}
		closeIdx += bodyStart
		body := sheetXML[bodyStart:closeIdx]
		pos = closeIdx + len("</row>")

		if strings.Contains(body, sentinel.RemoveRow) {
			continue // row discarded entirely
		}

		rebuilt, err := rebuildCells(body)
		if err != nil {
			return "", err
		}
		out.WriteString(sheetXML[idx : tagEnd+1])
		out.WriteString(rebuilt)
		out.WriteString("</row>")
	}
	return out.String(), nil
}

// rebuildCells rewrites every <c>...</c> within one row's body that
// carries a TO_NUMBER or TO_FORMULA sentinel into its final form.
func rebuildCells(rowBody string) (string, error) {
	var out strings.Builder
	pos := 0
	for {
		idx := strings.Index(rowBody[pos:], "<c ")
		if idx < 0 {
			out.WriteString(rowBody[pos:])
			break
		}
		idx += pos
		out.WriteString(rowBody[pos:idx])

		tagEnd := strings.Index(rowBody[idx:], ">")
		if tagEnd < 0 {
			out.WriteString(rowBody[idx:])
			break
		}
		tagEnd += idx

		if rowBody[tagEnd-1] == '/' {
			out.WriteString(rowBody[idx : tagEnd+1])
			pos = tagEnd + 1
			continue
		}

		openTag := rowBody[idx : tagEnd+1]
		bodyStart := tagEnd + 1
		closeIdx := strings.Index(rowBody[bodyStart:], "</c>")
		if closeIdx < 0 {
			out.WriteString(rowBody[idx:])
			break
		}
		closeIdx += bodyStart
		body := rowBody[bodyStart:closeIdx]
		pos = closeIdx + len("</c>")

		text := extractCellText(body)
		switch {
		case strings.Contains(text, sentinel.ToNumber):
			value := strings.Replace(text, sentinel.ToNumber, "", 1)
			attrs := removeTypeAttr(stripTrailingAngle(openTag))
			out.WriteString(attrs)
			out.WriteString(fmt.Sprintf("><v>%s</v></c>", strings.TrimSpace(value)))
		case strings.Contains(text, sentinel.ToFormula):
			value := strings.Replace(text, sentinel.ToFormula, "", 1)
			attrs := removeTypeAttr(stripTrailingAngle(openTag))
			out.WriteString(attrs)
			out.WriteString(fmt.Sprintf("><f>%s</f></c>", value))
		default:
			if f, ok := extractFormula(body); ok && strings.Contains(f, sentinel.ToFormula) {
				value := strings.Replace(f, sentinel.ToFormula, "", 1)
				attrs := removeTypeAttr(stripTrailingAngle(openTag))
				out.WriteString(attrs)
				out.WriteString(fmt.Sprintf("><f>%s</f></c>", value))
			} else {
				out.WriteString(openTag)
				out.WriteString(body)
				out.WriteString("</c>")
			}
		}
	}
	return out.String(), nil
}

// extractCellText concatenates the text of every <t>...</t> run found in
// a cell body, which is where the num/formula helpers' sentinel-prefixed
// output lands after inlining.
func extractCellText(body string) string {
	var b strings.Builder
	pos := 0
	for {
		idx := strings.Index(body[pos:], "<t")
		if idx < 0 {
			break
		}
		idx += pos
		tagEnd := strings.Index(body[idx:], ">")
		if tagEnd < 0 {
			break
		}
		tagEnd += idx
		if body[tagEnd-1] == '/' {
			pos = tagEnd + 1
			continue
		}
		textStart := tagEnd + 1
		end := strings.Index(body[textStart:], "</t>")
		if end < 0 {
			break
		}
		b.WriteString(body[textStart : textStart+end])
		pos = textStart + end + len("</t>")
	}
	return b.String()
}

// extractFormula reads the contents of a cell body's <f>...</f> element,
// if any; a self-closing <f/> reports an empty formula with ok true.
func extractFormula(body string) (string, bool) {
	start := strings.Index(body, "<f")
	if start < 0 {
		return "", false
	}
	tagEnd := strings.Index(body[start:], ">")
	if tagEnd < 0 {
		return "", false
	}
	tagEnd += start
	if body[tagEnd-1] == '/' {
		return "", true // self-closing <f/>, empty formula
	}
	bodyStart := tagEnd + 1
	end := strings.Index(body[bodyStart:], "</f>")
	if end < 0 {
		return "", false
	}
	return body[bodyStart : bodyStart+end], true
}

func removeTypeAttr(openTagNoAngle string) string {
	idx := strings.Index(openTagNoAngle, ` t="`)
	if idx < 0 {
		return openTagNoAngle
	}
	end := strings.Index(openTagNoAngle[idx+4:], `"`)
	if end < 0 {
		return openTagNoAngle
	}
	return openTagNoAngle[:idx] + openTagNoAngle[idx+4+end+1:]
}

// injectMergeCells regenerates <mergeCells count="K">...</mergeCells>
// immediately after </sheetData>, deduplicated and lexicographically
// sorted, if any merge records were collected.
func injectMergeCells(sheetXML string, merges []MergeRecord) string {
	if len(merges) == 0 {
		return sheetXML
	}
	refs := dedupSortedRefs(merges)
	var b strings.Builder
	b.WriteString(fmt.Sprintf(`<mergeCells count="%d">`, len(refs)))
	for _, ref := range refs {
		b.WriteString(fmt.Sprintf(`<mergeCell ref="%s"/>`, ref))
	}
	b.WriteString(`</mergeCells>`)

	marker := "</sheetData>"
	idx := strings.Index(sheetXML, marker)
	if idx < 0 {
		return sheetXML + b.String()
	}
	insertAt := idx + len(marker)
	return sheetXML[:insertAt] + b.String() + sheetXML[insertAt:]
}

func dedupSortedRefs(merges []MergeRecord) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range merges {
		if seen[m.Ref] {
			continue
		}
		seen[m.Ref] = true
		out = append(out, m.Ref)
	}
	sort.Strings(out)
	return out
}

// injectHyperlinks regenerates the <hyperlinks> block with a fresh xr:uid
// per entry, inserted immediately before <pageMargins> (or its
// self-closing form); falls back to inserting just before </worksheet>
// when no <pageMargins> element is present (§9 Open Question 2,
// resolved: treated as the bug fix the distilled spec calls for).
func injectHyperlinks(sheetXML string, hyperlinks []HyperlinkRecord) string {
	if len(hyperlinks) == 0 {
		return sheetXML
	}
	var b strings.Builder
	b.WriteString(`<hyperlinks xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:xr="http://schemas.microsoft.com/office/spreadsheetml/2014/revision">`)
	for _, h := range hyperlinks {
		b.WriteString(fmt.Sprintf(`<hyperlink ref="%s" location="%s" display="%s" xr:uid="{%s}"/>`,
			h.Ref, xmlAttrEscape(h.Location), xmlAttrEscape(h.Display), uuid.New().String()))
	}
	b.WriteString(`</hyperlinks>`)

	if idx := strings.Index(sheetXML, "<pageMargins"); idx >= 0 {
		return sheetXML[:idx] + b.String() + sheetXML[idx:]
	}
	if idx := strings.Index(sheetXML, "</worksheet>"); idx >= 0 {
		return sheetXML[:idx] + b.String() + sheetXML[idx:]
	}
	return sheetXML + b.String()
}

func xmlAttrEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
