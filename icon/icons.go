package icon

// Icon identifies one symbol of the registry.
type Icon int

const (
	Play Icon = iota
	Pause
	Replay
	Captions
	Fullscreen
	Progress
	Success
	Fail
	Watched
	Link
)

var icons = map[Icon]*iconDef{
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "(｀・ω・´)",
		squares: "▶",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(－ω－) zzZ",
		squares: "⏸",
	},
	Replay: {
		emoji:   "🔁",
		nerd:    "",
		plain:   "<<",
		kaomoji: "(ﾉ◕ヮ◕)ﾉ",
		squares: "↻",
	},
	Captions: {
		emoji:   "💬",
		nerd:    "",
		plain:   "CC",
		kaomoji: "(・o・)",
		squares: "▤",
	},
	Fullscreen: {
		emoji:   "🔲",
		nerd:    "",
		plain:   "[ ]",
		kaomoji: "(⌐■_■)",
		squares: "⛶",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "...",
		kaomoji: "(・_・ヾ",
		squares: "▣",
	},
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "OK",
		kaomoji: "(ᵔᴥᵔ)",
		squares: "■",
	},
	Fail: {
		emoji:   "💀",
		nerd:    "",
		plain:   "X",
		kaomoji: "(╯°□°)╯︵ ┻━┻",
		squares: "□",
	},
	Watched: {
		emoji:   "✅",
		nerd:    "",
		plain:   "+",
		kaomoji: "(＾▽＾)",
		squares: "▪",
	},
	Link: {
		emoji:   "🔗",
		nerd:    "",
		plain:   "->",
		kaomoji: "(・ω・)つ",
		squares: "▸",
	},
}
