// Package presenters builds the HTML fragments appended to rendered
// comment bodies and the leaderboard table.
package presenters

import (
	"fmt"
	"html"

	"github.com/bakry/voice-comments/internal/reaction"
)

// AudioPlayer returns the playable-audio fragment for an attachment
// URL. An empty URL renders nothing.
func AudioPlayer(url string) string {
	if url == "" {
		return ""
	}
	return fmt.Sprintf(
		`<div class="wvc-comment-audio"><audio controls src="%s"></audio></div>`,
		html.EscapeString(url),
	)
}

// ReactionControls returns the like/dislike buttons for a comment,
// carrying current counters and the comment id as a data attribute.
func ReactionControls(commentID int64, counters reaction.Counters) string {
	return fmt.Sprintf(
		`<div class="wvc-voice-reactions">`+
			`<button class="wvc-voice-like" data-comment-id="%d">&#128077; %d</button>`+
			`<button class="wvc-voice-dislike" data-comment-id="%d">&#128078; %d</button>`+
			`</div>`,
		commentID, counters.Likes,
		commentID, counters.Dislikes,
	)
}
