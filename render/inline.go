package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// InlineSharedStrings implements §4.3: rewrites every <c t="s"><v>K</v></c>
// into <c t="inlineStr">...the K-th shared fragment...</c>. A cell that
// also carries <f>...</f> keeps the formula verbatim and drops the cached
// <v> result; cells without t="s" pass through with their original body
// intact.
//
// Grounded on original_source/src/utils.rs's replace_shared_strings_in_sheet,
// which drives a quick_xml Reader/Writer event pair rather than a substring
// scan; this re-expresses that same technique over encoding/xml's
// Decoder.Token() stream (the pack's only XML library, adnsv/srw, is
// write-only — see SPEC_FULL.md's DOMAIN STACK section), matching the
// tokenizing approach Stage C (preprocess_stageC.go) already uses.
func InlineSharedStrings(sheetXML string, shared []string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(sheetXML))
	dec.Strict = false

	var out strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("inline shared strings: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "c" {
			writeToken(&out, tok)
			continue
		}

		if err := inlineCell(dec, &out, start, shared); err != nil {
			return "", fmt.Errorf("inline shared strings: %w", err)
		}
	}
	return out.String(), nil
}

// inlineCell consumes one <c>...</c> subtree already positioned just past
// its opening tag, and writes either the rewritten inlineStr cell or the
// original cell reconstructed unchanged.
func inlineCell(dec *xml.Decoder, out *strings.Builder, start xml.StartElement, shared []string) error {
	isShared := false
	for _, a := range start.Attr {
		if a.Name.Local == "t" && a.Value == "s" {
			isShared = true
			break
		}
	}

	var formula string
	hasFormula := false
	var vText string
	hasV := false
	sharedIdx := -1
	var passthrough strings.Builder

	depth := 0
cellBody:
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "f":
				text, err := readElementText(dec)
				if err != nil {
					return err
				}
				formula, hasFormula = text, true
			case "v":
				text, err := readElementText(dec)
				if err != nil {
					return err
				}
				vText, hasV = text, true
				if isShared {
					if n, convErr := strconv.Atoi(strings.TrimSpace(text)); convErr == nil {
						sharedIdx = n
					}
				}
			default:
				depth++
				passthrough.WriteString(renderStartTag(t))
			}
		case xml.EndElement:
			if depth == 0 {
				break cellBody
			}
			depth--
			passthrough.WriteString("</" + t.Name.Local + ">")
		case xml.CharData:
			passthrough.WriteString(string(t))
		}
	}

	if isShared && sharedIdx >= 0 && sharedIdx < len(shared) {
		newAttrs := replaceTypeAttr(stripTrailingAngle(renderStartTag(start)), "inlineStr")
		out.WriteString(newAttrs)
		out.WriteString(">")
		if hasFormula {
			out.WriteString("<f>")
			out.WriteString(xml.EscapeString(formula))
			out.WriteString("</f>")
		}
		out.WriteString(wrapLoopDelimiterRuns(shared[sharedIdx]))
		out.WriteString("</c>")
		return nil
	}

	out.WriteString(renderStartTag(start))
	if hasFormula {
		out.WriteString("<f>")
		out.WriteString(xml.EscapeString(formula))
		out.WriteString("</f>")
	}
	if hasV {
		out.WriteString("<v>")
		out.WriteString(xml.EscapeString(vText))
		out.WriteString("</v>")
	}
	out.WriteString(passthrough.String())
	out.WriteString("</c>")
	return nil
}

// readElementText consumes tokens up to and including the matching
// EndElement for an already-opened start tag, returning its direct
// CharData content. Nested elements are skipped over rather than
// recursed into, matching the shallow <f>/<v> schema these two callers
// rely on.
func readElementText(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 1
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				return b.String(), nil
			}
		case xml.CharData:
			if depth == 1 {
				b.Write(t)
			}
		}
	}
}

// writeToken re-emits a single decoder token verbatim, the same
// reconstruction Stage C uses for its own pass-through elements.
func writeToken(out *strings.Builder, tok xml.Token) {
	switch t := tok.(type) {
	case xml.StartElement:
		out.WriteString(renderStartTag(t))
	case xml.EndElement:
		out.WriteString("</" + t.Name.Local + ">")
	case xml.CharData:
		out.WriteString(string(t))
	}
}

// stripTrailingAngle removes the trailing ">" from a captured open tag so
// its attributes can be re-emitted with a different t= value.
func stripTrailingAngle(openTag string) string {
	return strings.TrimSuffix(openTag, ">")
}

// replaceTypeAttr removes any existing t="..." attribute from a <c ...
// open-tag fragment (without its trailing '>') and appends t="newType".
func replaceTypeAttr(openTagNoAngle, newType string) string {
	idx := strings.Index(openTagNoAngle, ` t="`)
	if idx >= 0 {
		end := strings.Index(openTagNoAngle[idx+4:], `"`)
		if end >= 0 {
			openTagNoAngle = openTagNoAngle[:idx] + openTagNoAngle[idx+4+end+1:]
		}
	}
	return fmt.Sprintf(`%s t="%s"`, openTagNoAngle, newType)
}

// wrapLoopDelimiterRuns wraps an <is>'s bare <t> content in <r> when that
// <t> holds a loop delimiter ({{#each or {{/each}}) and is not already
// inside an <r>, so Excel preserves the inline-string run structure
// across the template rewrite (§4.2 Stage C, final bullet).
func wrapLoopDelimiterRuns(fragment string) string {
	if !strings.Contains(fragment, "{{#each") && !strings.Contains(fragment, "{{/each}}") {
		return fragment
	}
	if strings.Contains(fragment, "<r>") {
		return fragment
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(fragment, "<is>"), "</is>")
	return "<is><r>" + inner + "</r></is>"
}
