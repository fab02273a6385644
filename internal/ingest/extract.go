package ingest

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"newsdesk/internal/textutil"
)

// ExtractBody distills the readable article text from an HTML page. The
// readability pass handles most article layouts; when it yields nothing the
// goquery fallback joins the page's paragraph text instead.
func ExtractBody(pageURL, html string) string {
	parsed, err := url.Parse(pageURL)
	if err == nil {
		parser := readability.NewParser()
		article, err := parser.Parse(strings.NewReader(html), parsed)
		if err == nil {
			if text := textutil.CollapseWhitespace(article.TextContent); text != "" {
				return text
			}
		}
	}
	return extractParagraphs(html)
}

func extractParagraphs(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script,style,nav,header,footer").Remove()

	var parts []string
	doc.Find("article p, main p, p").Each(func(_ int, s *goquery.Selection) {
		if text := textutil.CollapseWhitespace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		return textutil.CollapseWhitespace(doc.Text())
	}
	return strings.Join(parts, "\n\n")
}
