package las

import "testing"

func TestReturnsToLegacyClampsNumberOfReturns(t *testing.T) {
	rn, nor := ReturnsToLegacy(3, 5)
	if rn != 3 || nor != 5 {
		t.Errorf("got (%d,%d), want (3,5) unchanged within legacy range", rn, nor)
	}
	rn, nor = ReturnsToLegacy(8, 9)
	if nor != 7 {
		t.Errorf("number_of_returns = %d, want clamped to 7", nor)
	}
	if rn != 6 {
		t.Errorf("return_number = %d, want clamped to 6 for a non-last return", rn)
	}
}

func TestReturnsToLegacyPassesThroughAtSevenBoundary(t *testing.T) {
	// number_of_returns==7 never exceeds the legacy 3-bit range, so both
	// fields must pass straight through — including the common case of
	// the 7th (last) return of 7 total, which must stay (7,7) and not
	// get relabeled as a non-last return by the >7 clamp logic.
	rn, nor := ReturnsToLegacy(7, 7)
	if rn != 7 || nor != 7 {
		t.Errorf("ReturnsToLegacy(7,7) = (%d,%d), want (7,7) unchanged", rn, nor)
	}
	rn, nor = ReturnsToLegacy(3, 7)
	if rn != 3 || nor != 7 {
		t.Errorf("ReturnsToLegacy(3,7) = (%d,%d), want (3,7) unchanged", rn, nor)
	}
}

func TestReturnsToLegacyLastReturnOfMoreThanSevenIsSeven(t *testing.T) {
	// The 9th (and last) return of 9 total must downshift to
	// return_number=7, not 6, so "last return" survives the clamp.
	rn, nor := ReturnsToLegacy(9, 9)
	if nor != 7 {
		t.Fatalf("number_of_returns = %d, want 7", nor)
	}
	if rn != 7 {
		t.Errorf("return_number = %d, want 7 for the last return of >7", rn)
	}
}

func TestReturnsToExtendedIsLosslessWidening(t *testing.T) {
	rn, nor := ReturnsToExtended(2, 4)
	if rn != 2 || nor != 4 {
		t.Errorf("got (%d,%d), want (2,4)", rn, nor)
	}
}

func TestClassificationToLegacyCollapsesHighClasses(t *testing.T) {
	if got := ClassificationToLegacy(31); got != 31 {
		t.Errorf("ClassificationToLegacy(31) = %d, want 31", got)
	}
	if got := ClassificationToLegacy(32); got != 0 {
		t.Errorf("ClassificationToLegacy(32) = %d, want 0", got)
	}
	if got := ClassificationToLegacy(255); got != 0 {
		t.Errorf("ClassificationToLegacy(255) = %d, want 0", got)
	}
}

func TestScanAngleRoundTripAndSaturation(t *testing.T) {
	ext := quantizeScanAngle(45.0)
	if got := ScanAngleToLegacyRank(ext); got != 45 {
		t.Errorf("ScanAngleToLegacyRank(45deg) = %d, want 45", got)
	}
	if got := ScanAngleToLegacyRank(quantizeScanAngle(123.0)); got != 90 {
		t.Errorf("ScanAngleToLegacyRank(123deg) = %d, want saturated to 90", got)
	}
	if got := ScanAngleToLegacyRank(quantizeScanAngle(-123.0)); got != -90 {
		t.Errorf("ScanAngleToLegacyRank(-123deg) = %d, want saturated to -90", got)
	}
	if got := ScanAngleToExtended(30); got != quantizeScanAngle(30.0) {
		t.Errorf("ScanAngleToExtended(30) = %d, want %d", got, quantizeScanAngle(30.0))
	}
}
