// Package imagesize detects the pixel dimensions of raster images from raw
// bytes without decoding them, for PNG, JPEG, WebP, BMP, TIFF and GIF.
//
// Detection is done by reading format-specific header fields directly;
// nothing here decodes pixel data. Go's standard image package can decode
// config headers for some of these formats but has no WebP decoder at all
// and does not expose the exact TIFF/WebP byte layouts this package reads,
// so the formats are read by hand instead of delegating to image.DecodeConfig.
package imagesize

import "encoding/binary"

// Detect reports the width and height, in pixels, of the image in data.
// ok is false if the format is not recognized or the data is too short.
func Detect(data []byte) (width, height int, ok bool) {
	if w, h, ok := detectPNG(data); ok {
		return w, h, true
	}
	if w, h, ok := detectJPEG(data); ok {
		return w, h, true
	}
	if w, h, ok := detectWebP(data); ok {
		return w, h, true
	}
	if w, h, ok := detectBMP(data); ok {
		return w, h, true
	}
	if w, h, ok := detectTIFF(data); ok {
		return w, h, true
	}
	if w, h, ok := detectGIF(data); ok {
		return w, h, true
	}
	return 0, 0, false
}

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func detectPNG(data []byte) (int, int, bool) {
	if len(data) < 24 || string(data[0:8]) != string(pngMagic) {
		return 0, 0, false
	}
	w := binary.BigEndian.Uint32(data[16:20])
	h := binary.BigEndian.Uint32(data[20:24])
	return int(w), int(h), true
}

func detectJPEG(data []byte) (int, int, bool) {
	i := 2
	for i+9 < len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		segLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		if marker == 0xC0 || marker == 0xC2 {
			h := binary.BigEndian.Uint16(data[i+5 : i+7])
			w := binary.BigEndian.Uint16(data[i+7 : i+9])
			return int(w), int(h), true
		}
		i += 2 + segLen
	}
	return 0, 0, false
}

func detectWebP(data []byte) (int, int, bool) {
	if len(data) < 30 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return 0, 0, false
	}
	switch {
	case string(data[12:16]) == "VP8X":
		w := 1 + (uint32(data[24]) | uint32(data[25])<<8 | uint32(data[26])<<16)
		h := 1 + (uint32(data[27]) | uint32(data[28])<<8 | uint32(data[29])<<16)
		return int(w), int(h), true
	case string(data[12:15]) == "VP8" && data[15] == ' ':
		w := binary.LittleEndian.Uint16(data[26:28])
		h := binary.LittleEndian.Uint16(data[28:30])
		return int(w), int(h), true
	case string(data[12:16]) == "VP8L":
		b := data[21:25]
		w := 1 + ((uint32(b[1]&0x3F) << 8) | uint32(b[0]))
		h := 1 + ((uint32(b[3]&0xF) << 10) | (uint32(b[2]) << 2) | (uint32(b[1]&0xC0) >> 6))
		return int(w), int(h), true
	}
	return 0, 0, false
}

func detectBMP(data []byte) (int, int, bool) {
	if len(data) < 26 || string(data[0:2]) != "BM" {
		return 0, 0, false
	}
	w := binary.LittleEndian.Uint32(data[18:22])
	h := binary.LittleEndian.Uint32(data[22:26])
	return int(w), int(h), true
}

func detectTIFF(data []byte) (int, int, bool) {
	if len(data) < 8 {
		return 0, 0, false
	}
	var order binary.ByteOrder
	switch string(data[0:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return 0, 0, false
	}
	if order.Uint16(data[2:4]) != 42 {
		return 0, 0, false
	}
	ifdOffset := int(order.Uint32(data[4:8]))
	if len(data) < ifdOffset+2 {
		return 0, 0, false
	}
	numDir := int(order.Uint16(data[ifdOffset : ifdOffset+2]))
	var width, height int
	haveW, haveH := false, false
	for i := 0; i < numDir; i++ {
		entry := ifdOffset + 2 + i*12
		if len(data) < entry+12 {
			break
		}
		tag := order.Uint16(data[entry : entry+2])
		fieldType := order.Uint16(data[entry+2 : entry+4])
		valueOffset := data[entry+8 : entry+12]

		readValue := func() (int, bool) {
			switch fieldType {
			case 3: // SHORT
				return int(order.Uint16(valueOffset[:2])), true
			case 4: // LONG
				return int(order.Uint32(valueOffset)), true
			default:
				return 0, false
			}
		}
		switch tag {
		case 256: // ImageWidth
			if v, ok := readValue(); ok {
				width, haveW = v, true
			}
		case 257: // ImageLength
			if v, ok := readValue(); ok {
				height, haveH = v, true
			}
		}
		if haveW && haveH {
			break
		}
	}
	if haveW && haveH {
		return width, height, true
	}
	return 0, 0, false
}

func detectGIF(data []byte) (int, int, bool) {
	if len(data) < 10 {
		return 0, 0, false
	}
	sig := string(data[0:6])
	if sig != "GIF87a" && sig != "GIF89a" {
		return 0, 0, false
	}
	w := binary.LittleEndian.Uint16(data[6:8])
	h := binary.LittleEndian.Uint16(data[8:10])
	return int(w), int(h), true
}
