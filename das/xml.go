package das

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"fair-audit/models"
	"fair-audit/normalize"
)

// xmlNode ist ein Element im geparsten Dokumentbaum. children enthält
// Kind-Elemente und Textknoten in Dokumentreihenfolge; Namespaces
// werden auf lokale Namen reduziert, weil die Verlage dieselben
// Elemente mit unterschiedlichen Präfixen ausliefern.
type xmlNode struct {
	name     string
	attrs    []xml.Attr
	children []any
}

func parseXMLTree(data []byte) (*xmlNode, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	doc := &xmlNode{}
	stack := []*xmlNode{doc}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{name: t.Name.Local, attrs: append([]xml.Attr(nil), t.Attr...)}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, string(t))
		}
	}

	for _, c := range doc.children {
		if n, ok := c.(*xmlNode); ok {
			return n, nil
		}
	}
	return nil, errors.New("kein Wurzelelement im XML")
}

// attr liefert den Wert des ersten Attributs mit dem lokalen Namen,
// egal ob es mit xlink:- oder ohne Präfix geschrieben ist.
func (n *xmlNode) attr(local string) string {
	for _, a := range n.attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// text sammelt allen Zeichentext des Teilbaums in Dokumentreihenfolge.
func (n *xmlNode) text() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *xmlNode) writeText(b *strings.Builder) {
	for _, c := range n.children {
		switch v := c.(type) {
		case string:
			b.WriteString(v)
		case *xmlNode:
			v.writeText(b)
		}
	}
}

// find liefert den ersten Nachfahren mit dem lokalen Namen in
// Dokumentreihenfolge, oder nil.
func (n *xmlNode) find(name string) *xmlNode {
	for _, c := range n.children {
		child, ok := c.(*xmlNode)
		if !ok {
			continue
		}
		if child.name == name {
			return child
		}
		if hit := child.find(name); hit != nil {
			return hit
		}
	}
	return nil
}

// findAll sammelt alle Nachfahren mit dem lokalen Namen in
// Dokumentreihenfolge.
func (n *xmlNode) findAll(name string) []*xmlNode {
	var hits []*xmlNode
	n.collect(name, &hits)
	return hits
}

func (n *xmlNode) collect(name string, hits *[]*xmlNode) {
	for _, c := range n.children {
		child, ok := c.(*xmlNode)
		if !ok {
			continue
		}
		if child.name == name {
			*hits = append(*hits, child)
		}
		child.collect(name, hits)
	}
}

// availabilitySectionNames sind die Elementnamen, unter denen Elsevier
// und Springer das Data-Availability-Statement ablegen.
var availabilitySectionNames = []string{"data-availability", "availability", "dataAvailability"}

// LocateXML sucht das Data-Availability-Statement in Volltext-XML.
// Gefunden wird die erste Availability-Sektion mit Absätzen; deren
// Text wird zusammengefügt und alle Links (inter-ref, ext-link, a)
// aus den Absätzen eingesammelt.
func LocateXML(data []byte) (statement string, links []string, err error) {
	root, err := parseXMLTree(data)
	if err != nil {
		return "", nil, err
	}

	for _, sectionName := range availabilitySectionNames {
		section := root.find(sectionName)
		if section == nil {
			continue
		}
		paras := section.findAll("para")
		if len(paras) == 0 {
			paras = section.findAll("p")
		}
		if len(paras) == 0 {
			continue
		}

		var parts []string
		for _, p := range paras {
			parts = append(parts, strings.TrimSpace(p.text()))
		}
		statement = normalize.Whitespace(strings.Join(parts, " "))

		for _, p := range paras {
			for _, linkName := range []string{"inter-ref", "ext-link", "a"} {
				for _, l := range p.findAll(linkName) {
					if href := l.attr("href"); href != "" {
						links = append(links, href)
					}
				}
			}
		}
		break
	}

	return statement, links, nil
}

// ArticleMetaFromXML zieht Journal, Autoren, Corresponding Author und
// die Open-Access-Felder aus Volltext-XML. Fehlende Felder bleiben
// leer; ein Fehler kommt nur bei unparsbarem XML zurück.
func ArticleMetaFromXML(data []byte) (*models.ArticleMeta, error) {
	root, err := parseXMLTree(data)
	if err != nil {
		return nil, err
	}

	meta := &models.ArticleMeta{}

	for _, name := range []string{"publication-name", "publicationName", "journal-title"} {
		if j := root.find(name); j != nil {
			meta.Journal = strings.TrimSpace(j.text())
			break
		}
	}

	var authors []string
	for _, a := range root.findAll("author") {
		var name string
		if given := a.find("given-name"); given != nil {
			name = strings.TrimSpace(given.text()) + " "
		}
		surname := a.find("surname")
		if surname == nil {
			surname = a.find("family-name")
		}
		if surname != nil {
			name += strings.TrimSpace(surname.text())
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		authors = append(authors, name)

		email := a.find("e-address")
		if email == nil {
			email = a.find("email")
		}
		if email != nil && strings.TrimSpace(email.text()) != "" {
			meta.CorrespondingEmail = strings.TrimSpace(email.text())
			if meta.CorrespondingAuthor == "" {
				meta.CorrespondingAuthor = name
			}
		}

		for _, ref := range a.findAll("cross-ref") {
			if strings.HasPrefix(strings.ToLower(ref.attr("refid")), "cor") {
				meta.CorrespondingAuthor = name
			}
		}
	}
	meta.Authors = strings.Join(authors, ", ")

	if e := root.find("openaccessArticle"); e != nil {
		meta.OpenAccessArticle = strings.TrimSpace(e.text())
	}
	if e := root.find("openaccessType"); e != nil {
		meta.OpenAccessType = strings.TrimSpace(e.text())
	}
	if e := root.find("openaccessUserLicense"); e != nil {
		meta.OpenAccessUserLicense = strings.TrimSpace(e.text())
	}

	return meta, nil
}

// ElementText liefert den Text des ersten Elements, dessen lokaler
// Name auf einen der übergebenen passt. Unparsbares XML ergibt "".
func ElementText(data []byte, names ...string) string {
	root, err := parseXMLTree(data)
	if err != nil {
		return ""
	}
	for _, name := range names {
		if root.name == name {
			return strings.TrimSpace(root.text())
		}
		if e := root.find(name); e != nil {
			return strings.TrimSpace(e.text())
		}
	}
	return ""
}
