// Package render implements the sheet-XML template pipeline: pre-
// processing a worksheet's raw XML into a Handlebars source, evaluating
// it against a JSON-shaped data context, and post-processing the result
// back into valid, re-addressed OOXML. Render, RenderJSON and
// RenderWithParts are the public entry points; everything else in this package exists to serve
// one sheet's pass through that pipeline.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/aymerick/raymond"

	"github.com/sheetcraft/xlstpl/xl"
	"github.com/sheetcraft/xlstpl/xlzip"
)

// Render takes a byte sequence containing a .xlsx archive and a JSON-
// shaped data value, and returns a new archive with every Handlebars
// expression evaluated and every structural side effect (addresses,
// merges, hyperlinks, images, sheet renames/hides/deletes) applied.
func Render(template []byte, data any) ([]byte, error) {
	bundle, err := renderToBundle(template, data)
	if err != nil {
		return nil, err
	}
	out, err := bundle.Repack()
	if err != nil {
		return nil, renderErr("repack", err)
	}
	return out, nil
}

// RenderWithParts runs the same pipeline as Render but also hands back the
// finished part set keyed by archive path, alongside the repacked .xlsx
// bytes. xl.DirStorage can dump that part set to a directory for
// inspecting the intermediate XML a template produced, which the final
// ZIP bytes alone don't make convenient.
func RenderWithParts(template []byte, data any) (out []byte, parts map[string][]byte, err error) {
	bundle, err := renderToBundle(template, data)
	if err != nil {
		return nil, nil, err
	}
	out, err = bundle.Repack()
	if err != nil {
		return nil, nil, renderErr("repack", err)
	}
	return out, bundle.Parts, nil
}

func renderToBundle(template []byte, data any) (*xlzip.Bundle, error) {
	bundle, err := xlzip.Unpack(template)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContainer, err)
	}

	fragments, stub, err := ExtractSharedStrings(bundle.Parts["xl/sharedStrings.xml"])
	if err != nil {
		return nil, renderErr("sharedstrings", err)
	}
	bundle.Parts["xl/sharedStrings.xml"] = stub

	dataMap, _ := data.(map[string]interface{})
	ops := NewSheetOps()
	finalizer := NewFinalizer()

	for _, path := range bundle.SortedPaths("xl/worksheets/") {
		sheetNum, ok := xl.SheetNumberFromPath(path)
		if !ok {
			continue
		}
		out, err := renderSheet(bundle.Parts, path, sheetNum, fragments, ops, finalizer, data, dataMap)
		if err != nil {
			return nil, renderErr(fmt.Sprintf("sheet %d", sheetNum), err)
		}
		bundle.Parts[path] = []byte(out)
	}

	if err := applySheetOps(bundle.Parts, ops); err != nil {
		return nil, renderErr("sheetops", err)
	}

	return bundle, nil
}

// RenderJSON is Render's sibling for callers that can only hand over a
// JSON string rather than a structured value (§6 "a JSON-string input for
// language bindings that cannot marshal structured values directly").
func RenderJSON(template []byte, dataJSON string) ([]byte, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(dataJSON), &data); err != nil {
		return nil, renderErr("json", err)
	}
	return Render(template, data)
}

// renderSheet runs one sheet's full pipeline: Stage A (extract), Stage B
// (inject), inline (§4.3), Stage C (stitch + rewrite), template
// evaluation, post-processing, and image finalization.
func renderSheet(
	parts map[string][]byte,
	path string,
	sheetNum int,
	sharedStrings []string,
	ops *SheetOps,
	finalizer *Finalizer,
	data any,
	dataMap map[string]interface{},
) (string, error) {
	sheetXML := string(parts[path])

	remaining, merges, hyperlinks := ExtractMergesAndHyperlinks(sheetXML)

	localShared, err := InjectHelperCalls(remaining, sharedStrings, merges, hyperlinks)
	if err != nil {
		return "", fmt.Errorf("stage B: %w", err)
	}

	inlined, err := InlineSharedStrings(remaining, localShared)
	if err != nil {
		return "", fmt.Errorf("inline: %w", err)
	}

	templateXML, err := RewriteAddresses(inlined)
	if err != nil {
		return "", fmt.Errorf("stage C: %w", err)
	}

	tpl, err := raymond.Parse(templateXML)
	if err != nil {
		return "", fmt.Errorf("parse: %w", err)
	}

	ctx := NewContext(sheetNum, path, ops)
	RegisterHelpers(tpl, ctx, dataMap)

	rendered, err := tpl.Exec(data)
	if err != nil {
		return "", fmt.Errorf("exec: %w", err)
	}

	postProcessed, err := PostProcess(rendered, ctx.Merges, ctx.Hyperlinks)
	if err != nil {
		return "", fmt.Errorf("postprocess: %w", err)
	}

	final, err := finalizer.ProcessSheetImages(parts, sheetNum, postProcessed, ctx.Images)
	if err != nil {
		return "", fmt.Errorf("drawing: %w", err)
	}

	return final, nil
}

// applySheetOps performs the accumulated delete/rename/hide mutations
// once every sheet has rendered (§5), in deterministic sheet-number
// order via xl.Enumerate.
func applySheetOps(parts map[string][]byte, ops *SheetOps) error {
	var err error
	xl.Enumerate(ops.Delete, func(sheetNum int, del bool) error {
		if err != nil || !del {
			return nil
		}
		err = xl.DeleteSheet(parts, sheetNum)
		return nil
	})
	if err != nil {
		return err
	}
	xl.Enumerate(ops.Rename, func(sheetNum int, name string) error {
		if err != nil {
			return nil
		}
		err = xl.RenameSheet(parts, sheetNum, name)
		return nil
	})
	if err != nil {
		return err
	}
	xl.Enumerate(ops.Hide, func(sheetNum int, kind string) error {
		if err != nil {
			return nil
		}
		err = xl.HideSheet(parts, sheetNum, kind)
		return nil
	})
	return err
}
