package orchestrator

import (
	"github.com/sneller-labs/coretable/coretable"
	"github.com/sneller-labs/coretable/units"
)

// ScrollOverscan is the number of extra rows requested above and below
// the visible viewport on each scroll update, to absorb fast scrolling
// without a visible gap while the next window is still in flight.
const ScrollOverscan = 3

// ScrollWindow computes the SET_WINDOW request implied by a scroll
// position: startRow = floor(scrollTop / effectiveRowHeight), where
// effectiveRowHeight is pitch when the consumer has measured one
// (pitch > 0), else layout.RowHeight. rowCount pads viewportRows with
// ScrollOverscan rows on each side.
func ScrollWindow(scrollTop units.PixelSize, pitch units.PixelSize, layout coretable.ViewportLayout) SetWindowCmd {
	effectiveRowHeight := layout.RowHeight
	if pitch > 0 {
		effectiveRowHeight = pitch
	}
	if effectiveRowHeight == 0 {
		effectiveRowHeight = 1
	}
	startRow := units.RowIndex(uint32(scrollTop) / uint32(effectiveRowHeight))
	rowCount := layout.ViewportRows + 2*ScrollOverscan
	return SetWindowCmd{StartRow: startRow, RowCount: rowCount}
}
