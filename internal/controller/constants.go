// Package controller runs the capture/OCR/translate polling loop.
package controller

// Status lines shown to the user. Dedup outcomes are policy signals, not
// errors; they update the status only and leave the displayed text untouched.
const (
	StatusSelectRegion  = "Select a region to begin."
	StatusRegionSet     = "Region set: "
	StatusRunning       = "Running. Scroll the page to update the translation."
	StatusStopped       = "Stopped."
	StatusNotEnoughText = "OCR: not enough text (or noise)."
	StatusTextUnchanged = "OCR: changed pixels, same text."
	StatusCached        = "Translated (cached)."
	StatusTranslated    = "Translated."
	StatusTranslateErr  = "Translation error (see output)."
	StatusCaptureFailed = "Screen capture failed; stopped."
	StatusOCRFailed     = "OCR failed; stopped."
)
