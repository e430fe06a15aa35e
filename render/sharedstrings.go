package render

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// emptySharedStringsStub is the replacement for xl/sharedStrings.xml once
// every <si> entry has been lifted out into the in-memory table: the part
// bundle must always contain exactly one sharedStrings.xml part on exit,
// even though every string now lives inline in its cell.
const emptySharedStringsStub = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="0" uniqueCount="0"/>`

// ExtractSharedStrings lifts every <si>...</si> fragment out of
// sharedStrings.xml, in order, renaming the tags to <is>/</is> so each one
// is directly usable as an inline-string block inside a later
// <c t="inlineStr">. It returns the ordered fragments and the stub bytes
// the caller should write back in place of the original part.
//
// Grounded on original_source/src/utils.rs's shared-strings-extraction
// block: a plain substring scan, not a tokenizing pass, matching the
// original's own treatment of this one stage.
func ExtractSharedStrings(data []byte) (fragments []string, stub []byte, err error) {
	if !utf8.Valid(data) {
		return nil, nil, fmt.Errorf("sharedStrings.xml: invalid UTF-8")
	}
	s := string(data)
	pos := 0
	for {
		start := strings.Index(s[pos:], "<si>")
		if start < 0 {
			break
		}
		start += pos
		bodyStart := start + len("<si>")
		end := strings.Index(s[bodyStart:], "</si>")
		if end < 0 {
			// unterminated <si>: truncate the table at this point,
			// matching the distilled behavior for malformed input.
			break
		}
		end += bodyStart
		body := s[bodyStart:end]
		fragments = append(fragments, "<is>"+body+"</is>")
		pos = end + len("</si>")
	}
	return fragments, []byte(emptySharedStringsStub), nil
}
