package las

// Legacy<->extended field mapping, resolved per SPEC_FULL.md's Open
// Question #1 against original_source/LASlib/src/lasdefinitions.hpp
// (LASpoint::set_extended_return_number /
// set_extended_number_of_returns and their inverses).

// ReturnsToLegacy downshifts an extended (4-bit) return_number/
// number_of_returns pair into their legacy (3-bit) counterparts.
//
// number_of_returns clamps to 7 whenever the extended value exceeds 7.
// return_number clamps to 6 in the general case, except when the
// extended point is the last of more than 7 returns (return_number ==
// number_of_returns), in which case legacy return_number is 7 — so a
// "last return" flag survives the downshift even past the 3-bit
// ceiling.
func ReturnsToLegacy(extReturnNumber, extNumberOfReturns uint8) (returnNumber, numberOfReturns uint8) {
	if extNumberOfReturns <= 7 {
		return extReturnNumber, extNumberOfReturns
	}
	numberOfReturns = 7
	switch {
	case extReturnNumber <= 6:
		returnNumber = extReturnNumber
	case extReturnNumber == extNumberOfReturns:
		returnNumber = 7
	default:
		returnNumber = 6
	}
	return returnNumber, numberOfReturns
}

// ReturnsToExtended upshifts a legacy return_number/number_of_returns
// pair into the extended fields. This is a lossless widening: the
// legacy values are already within the extended range, so they carry
// over unchanged. Used when promoting a legacy-only point (e.g. read
// from a format-0..5 file and about to be written as format 6..10).
func ReturnsToExtended(returnNumber, numberOfReturns uint8) (extReturnNumber, extNumberOfReturns uint8) {
	return returnNumber, numberOfReturns
}

// ClassificationToLegacy maps an 8-bit extended classification to its
// 5-bit legacy view: values 0-31 pass through unchanged, values >= 32
// (extended-only classes, e.g. LAS 1.4's high point classes) collapse
// to 0 since the legacy field cannot represent them.
func ClassificationToLegacy(extClassification uint8) uint8 {
	if extClassification <= 31 {
		return extClassification
	}
	return 0
}

// ScanAngleToLegacyRank converts an extended scan angle (units of
// 0.006 degrees) to the legacy signed-byte scan angle rank (whole
// degrees), saturating to [-90, 90] as the original scanner hardware
// range requires.
func ScanAngleToLegacyRank(extScanAngle int16) int8 {
	degrees := float64(extScanAngle) * scanAngleUnit
	rounded := roundHalfAwayFromZero(degrees)
	if rounded > 90 {
		rounded = 90
	}
	if rounded < -90 {
		rounded = -90
	}
	return int8(rounded)
}

// ScanAngleToExtended converts a legacy scan angle rank (whole
// degrees) to the extended quantized representation.
func ScanAngleToExtended(rank int8) int16 {
	return quantizeScanAngle(float64(rank))
}
