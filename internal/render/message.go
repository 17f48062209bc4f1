package render

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	videoLinkRe = regexp.MustCompile(`\[YouTube Video:\s*([^\]]+)\]\((https?://(?:www\.)?(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]+)[^\s)]*)\)`)
	linkRe      = regexp.MustCompile(`\[([^\]]*)\]\((https?://[^\s)]+)\)`)
)

// MessageHTML convierte texto de un mensaje en HTML seguro para mostrar: escapa el contenido,
// transforma enlaces markdown y enlaces de video en anclas o embeds, y respeta saltos de línea.
// No modifica el texto almacenado.
func MessageHTML(text string) string {
	out := html.EscapeString(text)
	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\n", "<br>")

	// El patrón de video va primero: el genérico también lo reconocería.
	out = videoLinkRe.ReplaceAllStringFunc(out, func(match string) string {
		m := videoLinkRe.FindStringSubmatch(match)
		title, url, videoID := strings.TrimSpace(m[1]), m[2], m[3]
		return fmt.Sprintf(
			`<div class="youtube-embed-container">`+
				`<a href="%[2]s" target="_blank" rel="noopener noreferrer" class="youtube-thumbnail-link">`+
				`<img src="https://img.youtube.com/vi/%[3]s/hqdefault.jpg" alt="%[1]s" class="youtube-thumbnail">`+
				`<div class="youtube-play-button">▶</div></a>`+
				`<div class="youtube-title">%[1]s</div>`+
				`<a href="%[2]s" target="_blank" rel="noopener noreferrer" class="youtube-direct-link">Watch on YouTube</a>`+
				`</div>`,
			title, url, videoID,
		)
	})

	out = linkRe.ReplaceAllString(out, `<a href="$2" target="_blank" rel="noopener noreferrer">$1</a>`)
	return out
}
