package presenters

import (
	"fmt"
	"html"
	"strings"
)

// LeaderboardRow is one ranked author with their voice comment count
// and total likes across those comments.
type LeaderboardRow struct {
	Author       string
	CommentCount int64
	LikeCount    int64
}

// Leaderboard renders the top voice commenters as an HTML table.
func Leaderboard(rows []LeaderboardRow) string {
	if len(rows) == 0 {
		return `<p>No voice comments found.</p>`
	}

	var b strings.Builder
	b.WriteString(`<div class="voice-comments-leaderboard">`)
	b.WriteString(`<h2>Voice Comments Leaderboard</h2>`)
	b.WriteString(`<table><thead><tr><th>User</th><th>Comments</th><th>Likes</th></tr></thead><tbody>`)
	for _, row := range rows {
		fmt.Fprintf(&b,
			`<tr><td>%s</td><td>%d</td><td>%d</td></tr>`,
			html.EscapeString(row.Author), row.CommentCount, row.LikeCount,
		)
	}
	b.WriteString(`</tbody></table></div>`)
	return b.String()
}
