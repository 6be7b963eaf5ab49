package ui

// Keybinding represents a keyboard shortcut with its display name.
type Keybinding struct {
	Key  string // actual key(s) to match
	Desc string // description for help display
}

// Global keybindings (always available)
var (
	KeyQuit    = Keybinding{Key: "q", Desc: "Quit"}
	KeyQuitAlt = Keybinding{Key: "ctrl+c", Desc: "Quit"}
	KeyHelp    = Keybinding{Key: "?", Desc: "Show help"}
)

// Selector keybindings
var (
	KeyAuto     = Keybinding{Key: "0", Desc: "Automatic rotation"}
	KeyAutoAlt  = Keybinding{Key: "a", Desc: "Automatic rotation"}
	KeyLeft     = Keybinding{Key: "left", Desc: "Previous option"}
	KeyLeftAlt  = Keybinding{Key: "h", Desc: "Previous option"}
	KeyRight    = Keybinding{Key: "right", Desc: "Next option"}
	KeyRightAlt = Keybinding{Key: "l", Desc: "Next option"}
	KeyEnter    = Keybinding{Key: "enter", Desc: "Apply option"}
	KeySpace    = Keybinding{Key: " ", Desc: "Apply option"}
	KeyEsc      = Keybinding{Key: "esc", Desc: "Close/cancel"}
)

// matchKey checks if the input matches the keybinding.
func matchKey(input string, keys ...Keybinding) bool {
	for _, k := range keys {
		if input == k.Key {
			return true
		}
	}
	return false
}

// itemKey maps "1".."9" to an item index.
func itemKey(input string) (int, bool) {
	if len(input) != 1 || input[0] < '1' || input[0] > '9' {
		return 0, false
	}
	return int(input[0] - '1'), true
}
