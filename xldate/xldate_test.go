package xldate

import "testing"

func TestRoundTrip2024(t *testing.T) {
	const ts = 1704067200000 // 2024-01-01T00:00:00Z
	serial := ToExcelSerial(ts)
	if diff := serial - 45294.0; diff < -0.001 || diff > 0.001 {
		t.Fatalf("ToExcelSerial(2024-01-01) = %v, want ~45294", serial)
	}
	back, ok := FromExcelSerial(serial)
	if !ok {
		t.Fatalf("FromExcelSerial(%v) failed", serial)
	}
	if diff := back - ts; diff < -1000 || diff > 1000 {
		t.Fatalf("round trip mismatch: got %d, want %d", back, ts)
	}
}

func TestEpoch1970(t *testing.T) {
	serial := ToExcelSerial(0)
	if diff := serial - 25571.0; diff < -0.001 || diff > 0.001 {
		t.Fatalf("ToExcelSerial(1970-01-01) = %v, want ~25571", serial)
	}
}

func TestDay60IsInvalid(t *testing.T) {
	if _, ok := FromExcelSerial(60); ok {
		t.Fatalf("serial 60 (1900-02-29) must be invalid")
	}
	if _, ok := FromExcelSerial(59); !ok {
		t.Fatalf("serial 59 (1900-02-28) must be valid")
	}
	if _, ok := FromExcelSerial(-1); ok {
		t.Fatalf("negative serial must be invalid")
	}
}
