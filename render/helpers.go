package render

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/google/uuid"

	"github.com/sheetcraft/xlstpl/colref"
	"github.com/sheetcraft/xlstpl/internal/sentinel"
	"github.com/sheetcraft/xlstpl/xl"
)

// RegisterHelpers binds every helper in §4.4's table to tpl, closing over
// ctx (one sheet's render state) and data (the mutable top-level context
// set_data writes into). Registration is per-template, not global, because
// each sheet gets its own *Context and raymond's global registry would
// leak state across sheets.
//
// Grounded on original_source/src/template.rs's helper closures and
// src/utils.rs's register_basic_helpers.
func RegisterHelpers(tpl *raymond.Template, ctx *Context, data map[string]interface{}) {
	tpl.RegisterHelper("set_data", func(k string, v interface{}) raymond.SafeString {
		if data != nil {
			data[k] = v
		}
		return ""
	})

	tpl.RegisterHelper("row_offset_plus", func(n int) raymond.SafeString {
		ctx.RowOffsetPlus(n)
		return ""
	})
	tpl.RegisterHelper("row_offset_reset", func() raymond.SafeString {
		ctx.RowOffsetReset()
		return ""
	})
	tpl.RegisterHelper("get_row_offset", func() raymond.SafeString {
		return raymond.SafeString(ctx.GetRowOffset())
	})
	tpl.RegisterHelper("set_row_inline", func(n int) raymond.SafeString {
		ctx.SetRowInline(uint(n))
		return ""
	})
	tpl.RegisterHelper("_r", func() raymond.SafeString {
		return raymond.SafeString(ctx.R())
	})

	tpl.RegisterHelper("col_offset_plus", func(n int) raymond.SafeString {
		ctx.ColOffsetPlus(n)
		return ""
	})
	tpl.RegisterHelper("col_offset_reset", func() raymond.SafeString {
		ctx.ColOffsetReset()
		return ""
	})
	tpl.RegisterHelper("get_col_offset", func() raymond.SafeString {
		return raymond.SafeString(ctx.GetColOffset())
	})
	tpl.RegisterHelper("set_col_inline", func(n int) raymond.SafeString {
		ctx.SetColInline(uint(n))
		return ""
	})
	tpl.RegisterHelper("_c", func() raymond.SafeString {
		return raymond.SafeString(ctx.C())
	})
	tpl.RegisterHelper("_cr", func(args ...interface{}) raymond.SafeString {
		var col, row interface{}
		if len(args) > 0 {
			col = args[0]
		}
		if len(args) > 1 {
			row = args[1]
		}
		return raymond.SafeString(ctx.CR(col, row))
	})

	tpl.RegisterHelper("removeRow", func() raymond.SafeString {
		ctx.RowOffsetPlus(-1)
		return raymond.SafeString(sentinel.RemoveRow)
	})
	tpl.RegisterHelper("num", func(v interface{}) raymond.SafeString {
		f, ok := toFloat(v)
		if !ok {
			f = 0
		}
		return raymond.SafeString(sentinel.ToNumber + formatNumber(f))
	})
	tpl.RegisterHelper("formula", func(v interface{}) raymond.SafeString {
		s, ok := v.(string)
		if !ok {
			return ""
		}
		return raymond.SafeString(sentinel.ToFormula + s)
	})
	tpl.RegisterHelper("concat", func(args ...interface{}) raymond.SafeString {
		var b strings.Builder
		for _, a := range args {
			b.WriteString(fmt.Sprint(a))
		}
		return raymond.SafeString(b.String())
	})

	tpl.RegisterHelper("toColumnName", func(letters interface{}, inc int) raymond.SafeString {
		base := fmt.Sprint(letters)
		return raymond.SafeString(colref.Name(base, uint(inc)))
	})
	tpl.RegisterHelper("toColumnIndex", func(letters string) raymond.SafeString {
		return raymond.SafeString(strconv.FormatUint(uint64(colref.Index(letters)), 10))
	})

	tpl.RegisterHelper("mergeCell", func(ref string) raymond.SafeString {
		ctx.AddMerge(ref)
		return ""
	})
	tpl.RegisterHelper("hyperlink", func(ref, location, display string) raymond.SafeString {
		ctx.AddHyperlink(ref, location, display)
		return ""
	})
	tpl.RegisterHelper("img", func(args ...interface{}) raymond.SafeString {
		if len(args) == 0 {
			return ""
		}
		payload, _ := args[0].(string)
		rec := ImageRecord{
			Col:    ctx.ColInline + uint(ctx.ColOffset),
			Row:    ctx.RowInline + uint(ctx.RowOffset),
			Base64: payload,
			RID:    newImageRID(),
		}
		if len(args) > 1 {
			if w, ok := toFloat(args[1]); ok {
				rec.Width = uint(w)
				rec.HasWidth = true
			}
		}
		if len(args) > 2 {
			if h, ok := toFloat(args[2]); ok {
				rec.Height = uint(h)
				rec.HasHeight = true
			}
		}
		ctx.AddImage(rec)
		return ""
	})

	tpl.RegisterHelper("deleteCurrentSheet", func() raymond.SafeString {
		ctx.Ops.Delete[ctx.SheetNum] = true
		return ""
	})
	tpl.RegisterHelper("setCurrentSheetName", func(s string) raymond.SafeString {
		ctx.Ops.Rename[ctx.SheetNum] = xl.CleanSheetName(s)
		return ""
	})
	tpl.RegisterHelper("hideCurrentSheet", func(args ...interface{}) raymond.SafeString {
		kind := "hidden"
		if len(args) > 0 {
			if s, ok := args[0].(string); ok && s == "veryHidden" {
				kind = "veryHidden"
			}
		}
		ctx.Ops.Hide[ctx.SheetNum] = kind
		return ""
	})

	tpl.RegisterHelper("eq", func(a, b interface{}) bool { return fmt.Sprint(a) == fmt.Sprint(b) })
	tpl.RegisterHelper("ne", func(a, b interface{}) bool { return fmt.Sprint(a) != fmt.Sprint(b) })
	tpl.RegisterHelper("gt", func(a, b interface{}) bool {
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		return fa > fb
	})
	tpl.RegisterHelper("lt", func(a, b interface{}) bool {
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		return fa < fb
	})
	tpl.RegisterHelper("add", func(a, b interface{}) raymond.SafeString {
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		return raymond.SafeString(formatNumber(fa + fb))
	})
	tpl.RegisterHelper("sub", func(a, b interface{}) raymond.SafeString {
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		return raymond.SafeString(formatNumber(fa - fb))
	})
	tpl.RegisterHelper("upper", func(s string) raymond.SafeString { return raymond.SafeString(strings.ToUpper(s)) })
	tpl.RegisterHelper("lower", func(s string) raymond.SafeString { return raymond.SafeString(strings.ToLower(s)) })
	tpl.RegisterHelper("len", func(v interface{}) int {
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
			return rv.Len()
		default:
			return 0
		}
	})
}

func newImageRID() string {
	u := uuid.New()
	hex := strings.ReplaceAll(u.String(), "-", "")
	return "rId" + hex[:16]
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
