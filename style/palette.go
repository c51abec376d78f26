package style

import "github.com/charmbracelet/lipgloss"

// Palette for boxed CLI messages such as the missing engine notice.
var (
	Text  = lipgloss.Color("#cdd6f4")
	Mauve = lipgloss.Color("#cba6f7")
	Red   = lipgloss.Color("#f38ba8")

	AccentColor = Mauve
	HiRed       = Red
)
