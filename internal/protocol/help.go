package protocol

import (
	"fmt"

	"github.com/sweeney/gpiod/internal/display"
)

var infoText = []string{
	"Commands:",
	"READ pin => read value of pin 0..15.",
	"WRITE pin value => write value 0 or 1 to pin 0..15.",
	"MODE pin IN|OUT => set pin 0..15 as input or output.",
	"READALL => read all pins with hardware pin number and name.",
	"INFO => get this info.",
	"LCD command => control the lcd, see LCD Commands.",
}

var lcdInfoText = []string{
	"LCD Commands:",
	"LCD CLEAR => clear screen buffer.",
	"LCD SHOW => write screen buffer to lcd.",
	"LCD BACKLIGHT value => change backlight between 0 and 100%.",
	"LCD CONTRAST value => change contrast between 5 and 25.",
	"LCD DSPNORMAL value => change display 0 => normal, 1 => reverse.",
	"LCD INVERT => invert display.",
	"LCD DOT x1 y1 => write a dot to the screen buffer.",
	"LCD COLOR value => set color of drawing 0 => delete pixel, 1 => write pixel.",
	"LCD LINE x1 y1 x2 y2 => write line to screen buffer.",
	"LCD RECT x1 y1 x2 y2 fill => write rectangle to screen buffer.",
	"LCD CIRCLE x1 y1 r1 fill => write circle to screen buffer.",
	"LCD ELLIPSE x1 y1 r1 r2 fill => write ellipse to screen buffer.",
	"LCD TEXT fontId x1 y1 TEXT => write text to screen buffer.",
	"LCD FONTINFO => get a list of all fonts.",
	"LCD INFO => get this info.",
}

// InfoText returns the help for every top-level command followed by the
// LCD help.
func InfoText() []string {
	out := make([]string, 0, len(infoText)+len(lcdInfoText))
	out = append(out, infoText...)
	return append(out, lcdInfoText...)
}

// LCDInfoText returns the help for the LCD sub-commands.
func LCDInfoText() []string {
	return append([]string(nil), lcdInfoText...)
}

// FontInfoText lists the selectable fonts.
func FontInfoText() []string {
	out := make([]string, len(display.Fonts))
	for i, f := range display.Fonts {
		out[i] = fmt.Sprintf("LCD FONT SIZE %s ID %d", f.Size, f.ID)
	}
	return out
}
