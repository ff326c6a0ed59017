package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor           tcell.Color
	FgColor           tcell.Color
	BorderColor       tcell.Color
	BorderFocusColor  tcell.Color
	FieldBgColor      tcell.Color
	ButtonBgColor     tcell.Color
	ButtonFgColor     tcell.Color
	MenuKeyColor      tcell.Color
	TitleColor        tcell.Color
	CounterColor      tcell.Color
	UserColor         tcell.Color
	BotColor          tcell.Color
	MutedColor        tcell.Color
	AvatarFg          tcell.Color
	AvatarBg          tcell.Color
	FlashInfoColor    tcell.Color
	FlashSuccessColor tcell.Color
	FlashErrColor     tcell.Color
	ErrorColor        tcell.Color
	PromptBorderColor tcell.Color
}

// DefaultTheme returns the dark theme used by every page.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:           tcell.ColorBlack,
		FgColor:           tcell.ColorWhiteSmoke,
		BorderColor:       tcell.ColorSlateGray,
		BorderFocusColor:  tcell.ColorMediumPurple,
		FieldBgColor:      tcell.ColorDarkSlateGray,
		ButtonBgColor:     tcell.ColorMediumPurple,
		ButtonFgColor:     tcell.ColorWhite,
		MenuKeyColor:      tcell.ColorMediumPurple,
		TitleColor:        tcell.ColorPlum,
		CounterColor:      tcell.ColorPapayaWhip,
		UserColor:         tcell.ColorLightSkyBlue,
		BotColor:          tcell.ColorPlum,
		MutedColor:        tcell.ColorGray,
		AvatarFg:          tcell.ColorBlack,
		AvatarBg:          tcell.ColorPlum,
		FlashInfoColor:    tcell.ColorNavajoWhite,
		FlashSuccessColor: tcell.ColorMediumSeaGreen,
		FlashErrColor:     tcell.ColorOrangeRed,
		ErrorColor:        tcell.ColorOrangeRed,
		PromptBorderColor: tcell.ColorMediumPurple,
	}
}

// ColorTag returns c as a tview color tag value.
func ColorTag(c tcell.Color) string {
	for name, val := range tcell.ColorNames {
		if val == c {
			return name
		}
	}
	return fmt.Sprintf("#%06x", c.Hex())
}
