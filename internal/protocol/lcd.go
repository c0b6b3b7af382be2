package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sweeney/gpiod/internal/display"
)

// lcdCommand describes one LCD sub-command taking a fixed number of
// integer arguments. check runs before the display is touched.
type lcdCommand struct {
	arity  int
	argMsg string
	check  func(v []int) error
	apply  func(disp display.Display, v []int) error
}

var lcdCommands = map[string]lcdCommand{
	"LINE": {
		arity:  4,
		argMsg: "unexpected parameters for draw line",
		apply: func(disp display.Display, v []int) error {
			disp.Line(v[0], v[1], v[2], v[3])
			return nil
		},
	},
	"RECT": {
		arity:  5,
		argMsg: "unexpected parameters for draw rect",
		check:  fillAt(4),
		apply: func(disp display.Display, v []int) error {
			disp.Rect(v[0], v[1], v[2], v[3], v[4] == 1)
			return nil
		},
	},
	"CIRCLE": {
		arity:  4,
		argMsg: "unexpected parameters for draw circle",
		check:  all(nonNegative(2, "radius must not be negative"), fillAt(3)),
		apply: func(disp display.Display, v []int) error {
			disp.Circle(v[0], v[1], v[2], v[3] == 1)
			return nil
		},
	},
	"ELLIPSE": {
		arity:  5,
		argMsg: "unexpected parameters for draw ellipse",
		check: all(
			nonNegative(2, "radius must not be negative"),
			nonNegative(3, "radius must not be negative"),
			fillAt(4),
		),
		apply: func(disp display.Display, v []int) error {
			disp.Ellipse(v[0], v[1], v[2], v[3], v[4] == 1)
			return nil
		},
	},
	"DOT": {
		arity:  2,
		argMsg: "unexpected parameters for draw dot",
		apply: func(disp display.Display, v []int) error {
			disp.Dot(v[0], v[1])
			return nil
		},
	},
	"COLOR": {
		arity:  1,
		argMsg: "unexpected parameters for set pen color",
		check:  between(0, 0, 1, "parameters for set pen color can be only 0 or 1"),
		apply: func(disp display.Display, v []int) error {
			disp.SetPenColor(v[0])
			return nil
		},
	},
	"BACKLIGHT": {
		arity:  1,
		argMsg: "unexpected parameters for set backlight",
		check: between(0, display.MinBacklight, display.MaxBacklight,
			"parameters for set backlight must be between 0 and 100"),
		apply: func(disp display.Display, v []int) error {
			return disp.Backlight(v[0])
		},
	},
	"CONTRAST": {
		arity:  1,
		argMsg: "unexpected parameters for set contrast",
		check: between(0, display.MinContrast, display.MaxContrast,
			"parameters for set contrast must be between 5 and 25"),
		apply: func(disp display.Display, v []int) error {
			return disp.Contrast(v[0])
		},
	},
	"DSPNORMAL": {
		arity:  1,
		argMsg: "unexpected parameters for set display normal",
		check:  between(0, 0, 1, "parameters for set display normal can be only 0 or 1"),
		apply: func(disp display.Display, v []int) error {
			return disp.DisplayNormal(v[0] == 1)
		},
	},
	"INVERT": {
		argMsg: "unexpected parameters for invert",
		apply: func(disp display.Display, _ []int) error {
			disp.Invert()
			return nil
		},
	},
	"CLEAR": {
		argMsg: "unexpected parameters for clear",
		apply: func(disp display.Display, _ []int) error {
			disp.Clear()
			return nil
		},
	},
	"SHOW": {
		argMsg: "unexpected parameters for show",
		apply: func(disp display.Display, _ []int) error {
			return disp.Show()
		},
	},
}

func between(i, lo, hi int, msg string) func(v []int) error {
	return func(v []int) error {
		if v[i] < lo || v[i] > hi {
			return rangeErr(msg)
		}
		return nil
	}
}

func fillAt(i int) func(v []int) error {
	return between(i, 0, 1, "fill must be 0 or 1")
}

func nonNegative(i int, msg string) func(v []int) error {
	return func(v []int) error {
		if v[i] < 0 {
			return rangeErr(msg)
		}
		return nil
	}
}

func all(checks ...func(v []int) error) func(v []int) error {
	return func(v []int) error {
		for _, c := range checks {
			if err := c(v); err != nil {
				return err
			}
		}
		return nil
	}
}

// lcd handles "LCD <sub-verb> ...". rest is the text after "LCD".
func (d *Dispatcher) lcd(rest string) (Response, error) {
	sub, args := nextToken(rest)
	if sub == "" {
		return Response{}, argErr("parameter of type string expected")
	}

	switch sub {
	case "INFO":
		if args != "" {
			return Response{}, argErr("unexpected parameters for info")
		}
		return linesResponse(LCDInfoText()), nil
	case "FONTINFO":
		if args != "" {
			return Response{}, argErr("unexpected parameters for font info")
		}
		return linesResponse(FontInfoText()), nil
	case "TEXT":
		return d.lcdText(args)
	}

	c, ok := lcdCommands[sub]
	if !ok {
		return Response{}, unknownErr(msgUnknownLCDCommand)
	}
	v, err := intArgs(strings.Fields(args), c.arity, c.argMsg)
	if err != nil {
		return Response{}, err
	}
	if c.check != nil {
		if err := c.check(v); err != nil {
			return Response{}, err
		}
	}
	if err := d.ensureDisplay(); err != nil {
		return Response{}, err
	}
	if err := c.apply(d.disp, v); err != nil {
		return Response{}, fmt.Errorf("lcd %s: %w", sub, err)
	}
	return OK(), nil
}

// lcdText handles "TEXT <fontId> <x> <y> <text>". The text is the rest of
// the line and may contain blanks.
func (d *Dispatcher) lcdText(args string) (Response, error) {
	const msg = "unexpected parameters to write text"

	var v [3]int
	rest := args
	for i := range v {
		var tok string
		tok, rest = nextToken(rest)
		n, err := strconv.Atoi(tok)
		if err != nil {
			return Response{}, argErr(msg)
		}
		v[i] = n
	}
	if rest == "" {
		return Response{}, argErr(msg)
	}

	fontID, x, y := v[0], v[1], v[2]
	if fontID < 0 || fontID > display.MaxFontID {
		return Response{}, rangeErr("fontId to write Text must be between 0 and 33")
	}
	if err := d.ensureDisplay(); err != nil {
		return Response{}, err
	}
	d.disp.SelectFont(fontID)
	d.disp.WriteText(rest, x, y)
	return OK(), nil
}
