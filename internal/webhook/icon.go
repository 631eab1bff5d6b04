package webhook

import "strings"

// Preset icon URLs keyed off title keywords.
const (
	videoIconURL   = "https://em-content.zobj.net/source/apple/419/television_1f4fa.png"
	staticIconURL  = "https://em-content.zobj.net/source/apple/419/framed-picture_1f5bc-fe0f.png"
	defaultIconURL = "https://emoji.iamrohit.in/img-apple/1f3af.png"
)

// PickIcon maps keywords found in the title to a preset icon URL.
// First matching rule wins: "video" beats "image", anything else gets the
// default.
func PickIcon(title string) string {
	lower := strings.ToLower(title)
	if strings.Contains(lower, "video") {
		return videoIconURL
	}
	if strings.Contains(lower, "image") {
		return staticIconURL
	}
	return defaultIconURL
}
