// Package popover positions the translation popover next to a selection.
package popover

// Point is a viewport coordinate: terminal cells in the TUI, device
// independent pixels in the GUI.
type Point struct {
	X, Y int
}

// Size is a width and height in the same unit as Point.
type Size struct {
	W, H int
}

// Placement is the top-left corner of the popover.
type Placement struct {
	Top, Left int
}

// Options holds the gap below the anchor and the minimum distance kept from
// the viewport edges.
type Options struct {
	Offset int
	Margin int
}

// Place positions a box of size box for a selection released at anchor.
// The box opens below and to the right of the anchor, moves left when it
// would cross the right margin and flips above the anchor when it would
// cross the bottom margin. A box no larger than the viewport always ends up
// fully inside it.
func Place(anchor Point, box, viewport Size, opt Options) Placement {
	p := Placement{Top: anchor.Y + opt.Offset, Left: anchor.X}

	if p.Left+box.W > viewport.W-opt.Margin {
		p.Left = viewport.W - opt.Margin - box.W
	}
	if p.Top+box.H > viewport.H-opt.Margin {
		p.Top = anchor.Y - box.H - opt.Offset
	}
	if p.Left < opt.Margin {
		p.Left = opt.Margin
	}
	if p.Top < opt.Margin {
		p.Top = opt.Margin
	}

	// Margins that cannot be honoured give way to the viewport edges.
	if p.Left+box.W > viewport.W {
		p.Left = max(0, viewport.W-box.W)
	}
	if p.Top+box.H > viewport.H {
		p.Top = max(0, viewport.H-box.H)
	}
	return p
}
