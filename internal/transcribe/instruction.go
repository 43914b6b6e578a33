package transcribe

import (
	"strings"

	"media-scribe/internal/domain"
)

// BuildInstruction returns the natural-language instruction sent with the media.
func BuildInstruction(mimeType string, includeTimestamps bool) string {
	kind := "audio"
	if domain.IsVideoMime(mimeType) {
		kind = "video"
	}

	var b strings.Builder
	b.WriteString("Transcribe the spoken content of this " + kind + " file.\n")
	b.WriteString("Return only a clean transcript with no conversational filler, introductions or commentary.\n")
	b.WriteString("If more than one person speaks, label every speaker turn (for example \"Speaker 1:\", \"Speaker 2:\").\n")
	if includeTimestamps {
		b.WriteString("Start each paragraph or speaker turn with a timestamp in [HH:MM:SS] format. ")
		b.WriteString("Timestamps must be accurate to the " + kind + " timeline.")
	} else {
		b.WriteString("Do not include any timestamps.")
	}
	return b.String()
}
