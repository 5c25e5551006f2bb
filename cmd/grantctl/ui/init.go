package ui

import (
	"github.com/fatih/color"
)

var verboseFlag bool

var (
	bold    = color.New(color.Bold)
	faint   = color.New(color.Faint)
	green   = color.New(color.FgGreen)
	yellow  = color.New(color.FgYellow)
	red     = color.New(color.FgRed)
	cyan    = color.New(color.FgCyan)
	heading = color.New(color.FgCyan, color.Bold)
)

// InitUI initializes the UI with color and verbose settings.
func InitUI(noColor, verbose bool) {
	verboseFlag = verbose
	if noColor {
		color.NoColor = true
	}
}
