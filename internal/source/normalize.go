package source

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var brReplacer = strings.NewReplacer("<br>", " ", "<br/>", " ", "<br />", " ")

// NormalizeText strips the HTML markup the API embeds in textDisplay and
// collapses runs of whitespace to single spaces.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}

	// Line breaks arrive as <br> tags; turn them into whitespace before
	// stripping so adjacent words do not run together.
	text = brReplacer.Replace(text)

	stripped := text

	doc, parseErr := goquery.NewDocumentFromReader(strings.NewReader(text))
	if parseErr == nil {
		stripped = doc.Text()
	}

	return strings.Join(strings.Fields(stripped), " ")
}
