package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/temirov/gitreport/internal/utils/flags"
)

// ColorMode selects when the report uses ANSI colors.
type ColorMode string

// Supported color modes.
const (
	ColorModeAuto   ColorMode = "auto"
	ColorModeAlways ColorMode = "always"
	ColorModeNever  ColorMode = "never"
)

const (
	colorModeSubjectConstant = "color mode"

	ansiRedConstant          = "1"
	ansiGreenConstant        = "2"
	ansiYellowConstant       = "3"
	ansiMagentaConstant      = "5"
	ansiCyanConstant         = "6"
	ansiBrightRedConstant    = "9"
	ansiBrightGreenConstant  = "10"
	ansiBrightYellowConstant = "11"
	ansiBrightCyanConstant   = "14"
)

// ColorModeChoices lists the accepted color mode names.
func ColorModeChoices() []string {
	return []string{string(ColorModeAuto), string(ColorModeAlways), string(ColorModeNever)}
}

// UnmarshalText accepts auto, always, or never in any case.
func (colorMode *ColorMode) UnmarshalText(text []byte) error {
	choice, choiceError := flags.NormalizeChoice(colorModeSubjectConstant, string(text), ColorModeChoices())
	if choiceError != nil {
		return choiceError
	}
	*colorMode = ColorMode(choice)
	return nil
}

// String returns the mode name.
func (colorMode ColorMode) String() string {
	return string(colorMode)
}

// TerminalDetector reports whether output is an interactive terminal.
type TerminalDetector func(output io.Writer) bool

// IsTerminal reports whether output is a file descriptor attached to a terminal.
func IsTerminal(output io.Writer) bool {
	descriptorOutput, hasDescriptor := output.(interface{ Fd() uintptr })
	if !hasDescriptor {
		return false
	}
	return term.IsTerminal(int(descriptorOutput.Fd()))
}

// ColorScheme holds the styles for every report element.
type ColorScheme struct {
	Path          lipgloss.Style
	RemoteName    lipgloss.Style
	RemoteURL     lipgloss.Style
	Label         lipgloss.Style
	Identity      lipgloss.Style
	Missing       lipgloss.Style
	Branch        lipgloss.Style
	UnknownBranch lipgloss.Style
	CleanState    lipgloss.Style
	DirtyState    lipgloss.Style
	Staged        lipgloss.Style
	Changed       lipgloss.Style
	Frozen        lipgloss.Style
	Stashed       lipgloss.Style
}

// NewColorScheme builds styles for output using the color profile selected by colorMode.
// A nil detector falls back to IsTerminal.
func NewColorScheme(output io.Writer, colorMode ColorMode, detector TerminalDetector) ColorScheme {
	if detector == nil {
		detector = IsTerminal
	}

	renderer := lipgloss.NewRenderer(output)
	renderer.SetColorProfile(resolveColorProfile(output, colorMode, detector))

	foreground := func(color string) lipgloss.Style {
		return renderer.NewStyle().Foreground(lipgloss.Color(color))
	}

	return ColorScheme{
		Path:          foreground(ansiBrightYellowConstant).Underline(true),
		RemoteName:    foreground(ansiGreenConstant),
		RemoteURL:     foreground(ansiCyanConstant),
		Label:         foreground(ansiGreenConstant),
		Identity:      foreground(ansiCyanConstant),
		Missing:       foreground(ansiRedConstant),
		Branch:        foreground(ansiBrightCyanConstant),
		UnknownBranch: foreground(ansiMagentaConstant),
		CleanState:    foreground(ansiBrightGreenConstant),
		DirtyState:    foreground(ansiBrightRedConstant),
		Staged:        foreground(ansiGreenConstant),
		Changed:       foreground(ansiMagentaConstant),
		Frozen:        foreground(ansiCyanConstant),
		Stashed:       foreground(ansiYellowConstant),
	}
}

func resolveColorProfile(output io.Writer, colorMode ColorMode, detector TerminalDetector) termenv.Profile {
	switch colorMode {
	case ColorModeAlways:
		return termenv.ANSI
	case ColorModeNever:
		return termenv.Ascii
	}

	if termenv.EnvNoColor() || !detector(output) {
		return termenv.Ascii
	}
	return termenv.ANSI
}
