package display

import (
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/proggy"
)

// Font is one entry of the LCD font table.
type Font struct {
	ID   int
	Size string
	Face tinyfont.Fonter
}

// Fonts lists the selectable fonts in id order. Ids in [0,MaxFontID] that
// are missing from the table select the nearest lower entry.
var Fonts = []Font{
	{0, "4x6", &tinyfont.TomThumb},
	{2, "5x12", &tinyfont.Picopixel},
	{4, "5x8", &tinyfont.Org01},
	{6, "6x10", &proggy.TinySZ8pt7b},
	{8, "6x8", &proggy.TinySZ8pt7b},
	{10, "7x12", &freemono.Regular9pt7b},
	{11, "7x12", &freemono.Bold9pt7b},
	{12, "7x12", &freemono.Oblique9pt7b},
	{13, "7x12", &freemono.BoldOblique9pt7b},
	{14, "8x12", &freemono.Regular9pt7b},
	{15, "8x12", &freemono.Bold9pt7b},
	{16, "8x14", &freemono.Regular12pt7b},
	{17, "8x14", &freemono.Bold12pt7b},
	{18, "8x8", &proggy.TinySZ8pt7b},
	{19, "8x8", &tinyfont.Org01},
	{20, "10x16", &freemono.Regular12pt7b},
	{21, "10x16", &freemono.Bold12pt7b},
	{26, "16x26", &freemono.Regular18pt7b},
	{27, "16x26", &freemono.Bold18pt7b},
	{30, "24x40", &freemono.Regular24pt7b},
	{31, "24x40", &freemono.Bold24pt7b},
	{32, "32x53", &freemono.Regular24pt7b},
	{33, "32x53", &freemono.Bold24pt7b},
}

// FontByID returns the table entry used for id. Ids below zero map to the
// first entry and ids above MaxFontID to the last.
func FontByID(id int) Font {
	f := Fonts[0]
	for _, e := range Fonts {
		if e.ID > id {
			break
		}
		f = e
	}
	return f
}
