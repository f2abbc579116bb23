package inclusion

// ceilDiv computes ceil(a / b) for positive integers.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// RowSpan is the inclusive range [FirstRowIndex, LastRowIndex] of EDS rows a
// blob spans, computed from its absolute EDS share index and its length in
// shares.
type RowSpan struct {
	FirstRowIndex int
	LastRowIndex  int
}

// computeRowSpan reproduces the row-span arithmetic bit-exact: blob_index is
// taken to be a 1-based cumulative EDS share offset, and first_row_index is
// divided by the EDS side length even though the rest of the arithmetic is
// ODS-centric. This is pinned, not "corrected" — see the Open Questions
// this system inherited about which convention a given node version uses.
func computeRowSpan(blobIndex uint64, blobSize, edsSize int) RowSpan {
	odsSize := edsSize / 2
	firstRowIndex := ceilDiv(int(blobIndex), edsSize) - 1
	odsIndex := int(blobIndex) - firstRowIndex*odsSize
	lastRowIndex := ceilDiv(odsIndex+blobSize, odsSize) - 1
	return RowSpan{FirstRowIndex: firstRowIndex, LastRowIndex: lastRowIndex}
}
