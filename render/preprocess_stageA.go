package render

import "strings"

// StaticMerge is one <mergeCell ref="..."/> pulled out of a sheet before
// rendering. Its origin cell will later carry a mergeCell helper call so
// the range re-emits itself at whatever offset the loop expansion gives it.
type StaticMerge struct {
	Ref string
}

// StaticHyperlink is one <hyperlink .../> pulled out of a sheet before
// rendering, mirroring StaticMerge's role for the hyperlink helper.
type StaticHyperlink struct {
	Ref, Location, Display string
}

// ExtractMergesAndHyperlinks implements Stage A (§4.2): it locates
// <mergeCells>...</mergeCells> and <hyperlinks>...</hyperlinks> (in either
// their block or self-closing form), pulls the static references out, and
// removes both blocks from the sheet XML, returning what remains.
//
// Grounded on original_source/src/utils.rs's
// extract_and_remove_merge_cells_and_hyperlinks.
func ExtractMergesAndHyperlinks(sheetXML string) (remaining string, merges []StaticMerge, hyperlinks []StaticHyperlink) {
	remaining = sheetXML

	if body, rest, ok := extractElementBlock(remaining, "mergeCells"); ok {
		remaining = rest
		for _, elem := range findSelfClosing(body, "mergeCell") {
			if ref, ok := attrValue(elem, "ref"); ok {
				merges = append(merges, StaticMerge{Ref: ref})
			}
		}
	}

	if body, rest, ok := extractElementBlock(remaining, "hyperlinks"); ok {
		remaining = rest
		for _, elem := range findSelfClosing(body, "hyperlink") {
			ref, _ := attrValue(elem, "ref")
			location, _ := attrValue(elem, "location")
			display, _ := attrValue(elem, "display")
			hyperlinks = append(hyperlinks, StaticHyperlink{Ref: ref, Location: location, Display: display})
		}
	}

	return remaining, merges, hyperlinks
}

// extractElementBlock finds the first <tag ...>...</tag> or self-closing
// <tag .../> element named tag, and returns its inner body (empty for the
// self-closing form) plus the source with that whole element removed.
func extractElementBlock(xml, tag string) (body, rest string, found bool) {
	openMarker := "<" + tag
	start := strings.Index(xml, openMarker)
	if start < 0 {
		return "", xml, false
	}
	closeAngle := strings.Index(xml[start:], ">")
	if closeAngle < 0 {
		return "", xml, false
	}
	openTagEnd := start + closeAngle + 1

	if xml[openTagEnd-2] == '/' {
		// self-closing: <tag .../>
		return "", xml[:start] + xml[openTagEnd:], true
	}

	closeTag := "</" + tag + ">"
	closeStart := strings.Index(xml[openTagEnd:], closeTag)
	if closeStart < 0 {
		return "", xml, false
	}
	closeStart += openTagEnd
	body = xml[openTagEnd:closeStart]
	rest = xml[:start] + xml[closeStart+len(closeTag):]
	return body, rest, true
}

// findSelfClosing returns every self-closing <tag .../> element found in s.
func findSelfClosing(s, tag string) []string {
	var out []string
	marker := "<" + tag + " "
	pos := 0
	for {
		idx := strings.Index(s[pos:], marker)
		if idx < 0 {
			break
		}
		idx += pos
		end := strings.Index(s[idx:], "/>")
		if end < 0 {
			break
		}
		end += idx
		out = append(out, s[idx:end+2])
		pos = end + 2
	}
	return out
}

// attrValue extracts attrName="..." from a single element's source text.
func attrValue(elem, attrName string) (string, bool) {
	marker := attrName + `="`
	idx := strings.Index(elem, marker)
	if idx < 0 {
		return "", false
	}
	start := idx + len(marker)
	end := strings.Index(elem[start:], `"`)
	if end < 0 {
		return "", false
	}
	return elem[start : start+end], true
}
