// Package das lokalisiert Data-Availability-Statements in
// Publikationsseiten und Volltext-XML der Verlage.
package das

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"fair-audit/normalize"
)

var headingPattern = regexp.MustCompile(`(?i)data (availability|accessibility)|availability of data|data sharing statement`)

// inlinePatterns greifen, wenn die Seite keine eigene Überschrift für
// das Statement hat. Gefangen werden bis zu 1000 Zeichen nach dem
// einleitenden Satzanfang.
var inlinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(Data (availability|accessibility)[^:]*[:.\n]\s*.{0,1000})`),
	regexp.MustCompile(`(?i)(Availability of data[^:]*[:.\n]\s*.{0,1000})`),
	regexp.MustCompile(`(?i)(Data sharing statement[^:]*[:.\n]\s*.{0,1000})`),
}

// Locate sucht das Data-Availability-Statement einer Seite in drei
// Stufen: erst eine passende Überschrift samt Folgeabsätzen, dann die
// Satzmuster im Fließtext, zuletzt das citation_data_availability
// Meta-Tag. section ist nur bei einem Überschriften-Treffer belegt.
func Locate(doc *goquery.Document) (section, statement string) {
	doc.Find("h1,h2,h3,h4,h5,h6").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !headingPattern.MatchString(h.Text()) {
			return true
		}
		var fragments []string
		h.NextUntil("h1,h2,h3,h4,h5,h6").Each(func(_ int, sib *goquery.Selection) {
			fragments = append(fragments, sib.Text())
		})
		stmt := normalize.Text(strings.Join(fragments, " "))
		if stmt == "" {
			return true
		}
		section = normalize.Text(h.Text())
		statement = stmt
		return false
	})
	if statement != "" {
		return section, statement
	}

	text := PageText(doc)
	for _, p := range inlinePatterns {
		if m := p.FindString(text); m != "" {
			return "", normalize.Text(m)
		}
	}

	if content := MetaContent(doc, "citation_data_availability"); content != "" {
		return "", normalize.Text(content)
	}
	return "", ""
}

// PageText liefert den sichtbaren Text der Seite mit kollabiertem
// Whitespace, so wie ihn die Inline-Muster erwarten.
func PageText(doc *goquery.Document) string {
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// MetaContent liest das content-Attribut des ersten Meta-Tags mit dem
// gegebenen name.
func MetaContent(doc *goquery.Document, name string) string {
	content, _ := doc.Find(`meta[name="` + name + `"]`).Attr("content")
	return content
}

// MetaContents sammelt die content-Attribute aller Meta-Tags mit dem
// gegebenen name, etwa für citation_author.
func MetaContents(doc *goquery.Document, name string) []string {
	var values []string
	doc.Find(`meta[name="`+name+`"]`).Each(func(_ int, meta *goquery.Selection) {
		if content, ok := meta.Attr("content"); ok && content != "" {
			values = append(values, content)
		}
	})
	return values
}
