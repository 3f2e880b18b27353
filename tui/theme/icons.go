package theme

import "os"

// IconsEnv set to "ascii" disables Nerd Font glyphs.
const IconsEnv = "REMUX_ICONS"

const (
	nerdIconSuccess = "󰄬"
	nerdIconError   = ""
	nerdIconWarning = ""
	nerdIconInfo    = "󰋼"
	nerdIconLive    = ""
	nerdIconDead    = ""
	nerdIconArrow   = "󰁔"
	nerdIconTunnel  = "󰖟"
)

const (
	asciiIconSuccess = "✓"
	asciiIconError   = "✗"
	asciiIconWarning = "!"
	asciiIconInfo    = "i"
	asciiIconLive    = "●"
	asciiIconDead    = "○"
	asciiIconArrow   = "→"
	asciiIconTunnel  = "~"
)

var (
	IconSuccess string
	IconError   string
	IconWarning string
	IconInfo    string
	IconLive    string
	IconDead    string
	IconArrow   string
	IconTunnel  string
)

func init() {
	SetIcons(os.Getenv(IconsEnv) == "ascii" || loadUIConfig().Icons == "ascii")
}

// SetIcons switches between the ASCII and Nerd Font icon sets.
func SetIcons(ascii bool) {
	if ascii {
		IconSuccess, IconError, IconWarning, IconInfo = asciiIconSuccess, asciiIconError, asciiIconWarning, asciiIconInfo
		IconLive, IconDead, IconArrow, IconTunnel = asciiIconLive, asciiIconDead, asciiIconArrow, asciiIconTunnel
		return
	}
	IconSuccess, IconError, IconWarning, IconInfo = nerdIconSuccess, nerdIconError, nerdIconWarning, nerdIconInfo
	IconLive, IconDead, IconArrow, IconTunnel = nerdIconLive, nerdIconDead, nerdIconArrow, nerdIconTunnel
}
