package http

import "regexp"

var (
	youtubeRe = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)
	vimeoRe   = regexp.MustCompile(`vimeo\.com/(?:.*/)?(\d+)`)
)

// EmbedURL converts a share link into an embeddable player URL. Unknown
// hosts and direct files pass through untouched.
func EmbedURL(url, videoType string) string {
	switch videoType {
	case "youtube":
		if m := youtubeRe.FindStringSubmatch(url); m != nil {
			return "https://www.youtube.com/embed/" + m[1] + "?rel=0&modestbranding=1"
		}
	case "vimeo":
		if m := vimeoRe.FindStringSubmatch(url); m != nil {
			return "https://player.vimeo.com/video/" + m[1] + "?dnt=1"
		}
	}
	return url
}
