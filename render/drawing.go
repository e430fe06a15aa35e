package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"

	srwxml "github.com/adnsv/srw/xml"

	"github.com/sheetcraft/xlstpl/imagesize"
	"github.com/sheetcraft/xlstpl/xl"
)

const (
	emuPerPixel = 9525

	nsDrawingSpreadsheet = "http://schemas.openxmlformats.org/drawingml/2006/spreadsheetDrawing"
	nsDrawingMain        = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsRelationships      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRel         = "http://schemas.openxmlformats.org/package/2006/relationships"

	relTypeImage   = nsRelationships + "/image"
	relTypeDrawing = nsRelationships + "/drawing"

	contentTypeDrawing = "application/vnd.openxmlformats-officedocument.drawing+xml"
)

// Finalizer realizes the drawing/image records collected by every sheet's
// render into the OOXML parts that make them visible: drawingN.xml,
// drawingN.xml.rels, sheetN.xml.rels, the media blobs themselves, and the
// [Content_Types].xml patches those new parts require. A single Finalizer
// is shared across all sheets in one Render call so nextPictureID keeps
// incrementing in sheet-iteration order (§5 "the global image counter
// increments across all sheets").
//
// Grounded on original_source/src/template.rs's process_images /
// generate_drawing_xml / generate_drawing_rels / generate_sheet_rels,
// emitted via the teacher's adnsv/srw/xml writer (previously wired to
// emit a whole workbook from scratch in xl/writer.go; repurposed here to
// emit the specific new-from-nothing parts a drawing needs).
type Finalizer struct {
	nextPictureID int
}

// NewFinalizer returns a Finalizer with its picture-id counter at zero.
func NewFinalizer() *Finalizer {
	return &Finalizer{}
}

// ProcessSheetImages applies §4.6's six steps for one sheet's collected
// image records. sheetXML is that sheet's fully post-processed body; it
// returns the (possibly <drawing>-augmented) sheet XML. parts is the
// whole part bundle, mutated in place with the new drawing/media/
// relationship/manifest entries.
func (f *Finalizer) ProcessSheetImages(parts map[string][]byte, sheetNum int, sheetXML string, images []ImageRecord) (string, error) {
	if len(images) == 0 {
		return sheetXML, nil
	}

	anchors := make([]anchorInfo, 0, len(images))
	var relRIDs []string
	byHash := map[uuid.UUID]string{}

	for _, img := range images {
		blob, err := base64.StdEncoding.DecodeString(img.Base64)
		if err != nil {
			return "", fmt.Errorf("sheet %d: image %s: base64 decode: %w", sheetNum, img.RID, err)
		}

		w, h := img.Width, img.Height
		if !img.HasWidth || !img.HasHeight {
			pw, ph, ok := imagesize.Detect(blob)
			if !ok {
				return "", fmt.Errorf("sheet %d: image %s: could not detect dimensions and none were supplied", sheetNum, img.RID)
			}
			if !img.HasWidth {
				w = uint(pw)
			}
			if !img.HasHeight {
				h = uint(ph)
			}
		}

		// Identical payloads (the same logo inserted at several cells, say)
		// share one media blob and one relationship, keyed by content hash
		// rather than by the helper-assigned rid each img call minted.
		hash := xl.BlobHash(blob)
		rid, already := byHash[hash]
		if !already {
			rid = img.RID
			byHash[hash] = rid
			parts[fmt.Sprintf("xl/media/%s.png", rid)] = blob
			relRIDs = append(relRIDs, rid)
		}

		f.nextPictureID++
		anchors = append(anchors, anchorInfo{
			rid: rid,
			col: img.Col,
			row: img.Row,
			cx:  uint64(w) * emuPerPixel,
			cy:  uint64(h) * emuPerPixel,
			id:  f.nextPictureID,
		})
	}

	drawingName := fmt.Sprintf("drawing%d", sheetNum)
	drawingPath := "xl/drawings/" + drawingName + ".xml"
	drawingRelsPath := "xl/drawings/_rels/" + drawingName + ".xml.rels"
	sheetRelsPath := fmt.Sprintf("xl/worksheets/_rels/sheet%d.xml.rels", sheetNum)

	parts[drawingPath] = []byte(renderDrawingXML(anchors))
	parts[drawingRelsPath] = []byte(renderDrawingRels(relRIDs))
	parts[sheetRelsPath] = mergeDrawingSheetRels(parts[sheetRelsPath], drawingName)

	patchContentTypesForDrawing(parts, drawingName)

	return insertDrawingReference(sheetXML), nil
}

type anchorInfo struct {
	rid    string
	col    uint
	row    uint
	cx, cy uint64
	id     int
}

// renderDrawingXML builds one <xdr:oneCellAnchor> per anchor, anchored at
// (col-1, row-1) with zero cell offset and an absolute EMU extent.
func renderDrawingXML(anchors []anchorInfo) string {
	var bb bytes.Buffer
	x := srwxml.NewWriter(&bb, srwxml.WriterConfig{Indent: srwxml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("xdr:wsDr")
	x.Attr("xmlns:xdr", nsDrawingSpreadsheet)
	x.Attr("xmlns:a", nsDrawingMain)
	x.Attr("xmlns:r", nsRelationships)

	for _, a := range anchors {
		col0 := intMax0(int(a.col) - 1)
		row0 := intMax0(int(a.row) - 1)

		x.OTag("xdr:oneCellAnchor")

		x.OTag("+xdr:from")
		x.CTag()
		x.OTag("xdr:col").Write(col0).CTag()
		x.OTag("xdr:colOff").Write(0).CTag()
		x.OTag("xdr:row").Write(row0).CTag()
		x.OTag("xdr:rowOff").Write(0).CTag()

		x.OTag("+xdr:ext").Attr("cx", a.cx).Attr("cy", a.cy).CTag()

		x.OTag("xdr:pic")
		x.OTag("xdr:nvPicPr")
		x.OTag("+xdr:cNvPr").Attr("id", a.id).Attr("name", fmt.Sprintf("Picture %d", a.id)).CTag()
		x.OTag("+xdr:cNvPicPr").CTag()
		x.CTag() // nvPicPr

		x.OTag("xdr:blipFill")
		x.OTag("+a:blip").Attr("r:embed", a.rid).CTag()
		x.OTag("a:stretch")
		x.OTag("+a:fillRect").CTag()
		x.CTag() // stretch
		x.CTag() // blipFill

		x.OTag("xdr:spPr")
		x.OTag("a:xfrm")
		x.OTag("+a:off").Attr("x", 0).Attr("y", 0).CTag()
		x.OTag("+a:ext").Attr("cx", a.cx).Attr("cy", a.cy).CTag()
		x.CTag() // xfrm
		x.OTag("+a:prstGeom").Attr("prst", "rect")
		x.OTag("+a:avLst").CTag()
		x.CTag() // prstGeom
		x.CTag() // spPr

		x.CTag() // pic

		x.OTag("+xdr:clientData").CTag()

		x.CTag() // oneCellAnchor
	}

	x.CTag() // wsDr
	return bb.String()
}

// renderDrawingRels emits one Relationship per distinct media blob; rids
// is already deduplicated by content hash in ProcessSheetImages.
func renderDrawingRels(rids []string) string {
	var bb bytes.Buffer
	x := srwxml.NewWriter(&bb, srwxml.WriterConfig{Indent: srwxml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("Relationships")
	x.Attr("xmlns", nsPackageRel)
	for _, rid := range rids {
		x.OTag("+Relationship").
			Attr("Id", rid).
			Attr("Type", relTypeImage).
			Attr("Target", "../media/"+rid+".png").
			CTag()
	}
	x.CTag()
	return bb.String()
}

// mergeDrawingSheetRels appends a drawing relationship to an existing
// sheetN.xml.rels blob (if one was already present in the template), or
// creates a fresh one with a single rId1, per §4.6 step 3.
func mergeDrawingSheetRels(existing []byte, drawingName string) []byte {
	target := "../drawings/" + drawingName + ".xml"
	if len(existing) == 0 {
		var bb bytes.Buffer
		x := srwxml.NewWriter(&bb, srwxml.WriterConfig{Indent: srwxml.Indent2Spaces})
		x.XmlStandaloneDecl()
		x.OTag("Relationships")
		x.Attr("xmlns", nsPackageRel)
		x.OTag("+Relationship").Attr("Id", "rId1").Attr("Type", relTypeDrawing).Attr("Target", target).CTag()
		x.CTag()
		return []byte(bb.String())
	}

	s := string(existing)
	closeTag := "</Relationships>"
	idx := strings.LastIndex(s, closeTag)
	if idx < 0 {
		return existing
	}
	rid := nextFreeRID(s)
	insertion := fmt.Sprintf(`<Relationship Id="%s" Type="%s" Target="%s"/>`, rid, relTypeDrawing, target)
	return []byte(s[:idx] + insertion + s[idx:])
}

func nextFreeRID(rels string) string {
	n := 1
	for strings.Contains(rels, fmt.Sprintf(`Id="rId%d"`, n)) {
		n++
	}
	return fmt.Sprintf("rId%d", n)
}

func insertDrawingReference(sheetXML string) string {
	if strings.Contains(sheetXML, "<drawing ") || strings.Contains(sheetXML, "<drawing>") {
		return sheetXML
	}
	idx := strings.LastIndex(sheetXML, "</worksheet>")
	if idx < 0 {
		return sheetXML
	}
	return sheetXML[:idx] + `<drawing r:id="rId1"/>` + sheetXML[idx:]
}

// patchContentTypesForDrawing adds the PNG default extension (once) and
// an Override for the new drawing part to [Content_Types].xml.
func patchContentTypesForDrawing(parts map[string][]byte, drawingName string) {
	ct := string(parts["[Content_Types].xml"])
	if ct == "" {
		return
	}
	if !strings.Contains(ct, `Extension="png"`) {
		ct = strings.Replace(ct, "</Types>", `<Default Extension="png" ContentType="image/png"/></Types>`, 1)
	}
	partName := "/xl/drawings/" + drawingName + ".xml"
	overrideMarker := fmt.Sprintf(`PartName="%s"`, partName)
	if !strings.Contains(ct, overrideMarker) {
		override := fmt.Sprintf(`<Override PartName="%s" ContentType="%s"/>`, partName, contentTypeDrawing)
		ct = strings.Replace(ct, "</Types>", override+"</Types>", 1)
	}
	parts["[Content_Types].xml"] = []byte(ct)
}

func intMax0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
