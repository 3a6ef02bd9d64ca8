package domain

// Margins are page margins in inches.
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// PrintOptions describes the page geometry for PDF export.
type PrintOptions struct {
	// Paper is the page size the options were derived from.
	Paper Paper

	// Width and Height are the page dimensions in inches.
	Width  float64
	Height float64

	// Margins are fixed per paper size.
	Margins Margins

	// PrintBackground keeps background colours and images.
	PrintBackground bool

	// DisplayHeaderFooter adds the browser's header and footer.
	DisplayHeaderFooter bool

	// Scale is the rendering scale (1 = 100%).
	Scale float64
}

const mmPerInch = 25.4

// PrintOptionsFor returns the export geometry for a paper size.
// A4 uses 12mm margins, Letter uses 0.5in margins. Unknown sizes use A4.
func PrintOptionsFor(paper Paper) PrintOptions {
	opts := PrintOptions{
		PrintBackground:     true,
		DisplayHeaderFooter: false,
		Scale:               1,
	}
	switch paper {
	case PaperLetter:
		opts.Paper = PaperLetter
		opts.Width, opts.Height = 8.5, 11
		opts.Margins = uniformMargins(0.5)
	default:
		opts.Paper = PaperA4
		opts.Width, opts.Height = 210/mmPerInch, 297/mmPerInch
		opts.Margins = uniformMargins(12 / mmPerInch)
	}
	return opts
}

func uniformMargins(v float64) Margins {
	return Margins{Top: v, Right: v, Bottom: v, Left: v}
}
