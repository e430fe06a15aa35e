// Package xldate converts between Unix-epoch milliseconds and Excel date
// serial numbers, reproducing Excel's 1900-leap-year quirk: serial 60 is
// treated by Excel as 1900-02-29, a date that never existed, because Lotus
// 1-2-3 (which Excel stays bug-compatible with) mistakenly treated 1900 as
// a leap year.
package xldate

const (
	excelEpochOffsetDays = 25569 // days from the Excel epoch to the Unix epoch
	msPerDay              = 86400000
)

// ToExcelSerial converts a Unix-epoch millisecond timestamp to an Excel
// date serial number, applying the 1900 leap-year adjustment: values at or
// before Excel day 60 are shifted by one day, values after by two.
func ToExcelSerial(unixMs int64) float64 {
	v := unixMs + excelEpochOffsetDays*msPerDay
	if v <= 60*msPerDay {
		v += msPerDay
	} else {
		v += 2 * msPerDay
	}
	return float64(v) / float64(msPerDay)
}

// FromExcelSerial converts an Excel date serial number back to a
// Unix-epoch millisecond timestamp. It reports ok=false for the
// nonexistent day 60 (1900-02-29) and for any negative serial.
func FromExcelSerial(serial float64) (unixMs int64, ok bool) {
	v := serial
	switch {
	case v < 60:
		v -= 1
	case v > 60:
		v -= 2
	}
	if v < 0 || serial == 60 {
		return 0, false
	}
	ms := int64(v*float64(msPerDay)+0.5) - excelEpochOffsetDays*msPerDay
	return ms, true
}
