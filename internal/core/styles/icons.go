package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

// Task icons, keyed by task icon name.
var taskIcons = map[string]string{
	"wind":   "\U000F059D", // 󰖝
	"coffee": "\U000F0176", // 󰅶
	"book":   "\U000F00BA", // 󰂺
	"star":   "\U000F04CE", // 󰓎
	"heart":  "\U000F02D1", // 󰋑
	"cloud":  "\U000F015F", // 󰅟
	"sun":    "\U000F0599", // 󰖙
	"moon":   "\U000F0594", // 󰖔
	"chat":   "\U000F0B79", // 󰭹
}

var (
	IconCheck   = "\U000F012C" // 󰄬
	IconPending = "\U000F0130" // 󰄰
	IconBell    = "\U000F009A" // 󰂚
)

// TaskIcon returns the glyph for a task icon name, falling back to wind.
func TaskIcon(name string) string {
	if glyph, ok := taskIcons[name]; ok {
		return glyph
	}
	return taskIcons["wind"]
}
