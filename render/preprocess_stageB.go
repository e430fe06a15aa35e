package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sheetcraft/xlstpl/colref"
)

// InjectHelperCalls implements Stage B (§4.2): for each extracted merge or
// hyperlink, it locates the origin cell in sheetXML, reads its shared-
// string index, and inserts a helper call into a *sheet-local clone* of
// the shared-string table so that once the loop containing that cell
// expands, the merge/hyperlink re-emits itself at the correct offset
// coordinates. The table passed in is never mutated; other sheets are
// unaffected (§3 invariant: "injections are scoped per sheet via a local
// clone").
//
// Grounded on original_source/src/utils.rs's
// inject_helpers_into_shared_strings.
func InjectHelperCalls(sheetXML string, shared []string, merges []StaticMerge, hyperlinks []StaticHyperlink) ([]string, error) {
	local := make([]string, len(shared))
	copy(local, shared)

	for _, m := range merges {
		origin, end, ok := splitMergeRef(m.Ref)
		if !ok {
			continue
		}
		idx, ok := findCellSharedIndex(sheetXML, origin)
		if !ok {
			continue
		}
		if idx < 0 || idx >= len(local) {
			continue
		}
		endLetters, endRow, ok := colref.Split(end)
		if !ok {
			continue
		}
		call := fmt.Sprintf(`{{mergeCell (concat (_cr) ":" (_cr "%s" %d))}}`, endLetters, endRow)
		local[idx] = injectIntoFragment(local[idx], call)
	}

	for _, h := range hyperlinks {
		idx, ok := findCellSharedIndex(sheetXML, h.Ref)
		if !ok {
			continue
		}
		if idx < 0 || idx >= len(local) {
			continue
		}
		call := fmt.Sprintf(`{{hyperlink (_cr) %s %s}}`, quoteArg(h.Location), quoteArg(h.Display))
		local[idx] = injectIntoFragment(local[idx], call)
	}

	return local, nil
}

// splitMergeRef splits "A1:B2" into ("A1", "B2").
func splitMergeRef(ref string) (origin, end string, ok bool) {
	parts := strings.SplitN(ref, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// findCellSharedIndex locates <c r="ref" t="s">...<v>K</v>...</c> in
// sheetXML and returns K.
func findCellSharedIndex(sheetXML, ref string) (int, bool) {
	marker := `r="` + ref + `"`
	idx := strings.Index(sheetXML, marker)
	if idx < 0 {
		return 0, false
	}
	cellStart := strings.LastIndex(sheetXML[:idx], "<c ")
	if cellStart < 0 {
		return 0, false
	}
	tagEnd := strings.Index(sheetXML[cellStart:], ">")
	if tagEnd < 0 {
		return 0, false
	}
	if !strings.Contains(sheetXML[cellStart:cellStart+tagEnd], ` t="s"`) {
		return 0, false
	}
	bodyStart := cellStart + tagEnd + 1
	cellEnd := strings.Index(sheetXML[bodyStart:], "</c>")
	if cellEnd < 0 {
		return 0, false
	}
	body := sheetXML[bodyStart : bodyStart+cellEnd]
	vStart := strings.Index(body, "<v>")
	if vStart < 0 {
		return 0, false
	}
	vStart += len("<v>")
	vEnd := strings.Index(body[vStart:], "</v>")
	if vEnd < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(body[vStart : vStart+vEnd]))
	if err != nil {
		return 0, false
	}
	return n, true
}

// injectIntoFragment inserts call text immediately before the last </t>
// in an <is>...</is> fragment, or just before </is> if no <t> run exists.
func injectIntoFragment(fragment, call string) string {
	if idx := strings.LastIndex(fragment, "</t>"); idx >= 0 {
		return fragment[:idx] + call + fragment[idx:]
	}
	if idx := strings.LastIndex(fragment, "</is>"); idx >= 0 {
		return fragment[:idx] + "<t>" + call + "</t>" + fragment[idx:]
	}
	return fragment + call
}

func quoteArg(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
