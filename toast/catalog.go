package toast

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// TemplateSource produces a fresh template document for a template type.
type TemplateSource interface {
	TemplateContent(t TemplateType) (*etree.Document, error)
}

// Catalog is a TemplateSource serving the built-in skeletons of the legacy
// toast templates. Notification services without a platform template store
// embed it.
type Catalog struct{}

// TemplateContent returns a new document for t. Each call returns an
// independent document that the caller owns.
func (Catalog) TemplateContent(t TemplateType) (*etree.Document, error) {
	return TemplateContent(t)
}

// TemplateContent returns a new skeleton document for t.
func TemplateContent(t TemplateType) (*etree.Document, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, t)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(templateXML(t)); err != nil {
		return nil, fmt.Errorf("load template %s: %w", t, err)
	}
	return doc, nil
}

func templateXML(t TemplateType) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<toast><visual><binding template="%s">`, t)
	if t.HasImage() {
		b.WriteString(`<image id="1" src=""/>`)
	}
	for i := 1; i <= t.LineCount(); i++ {
		fmt.Fprintf(&b, `<text id="%d"></text>`, i)
	}
	b.WriteString(`</binding></visual></toast>`)
	return b.String()
}

// BindingTemplate returns the template attribute of the document's binding,
// or "" when the document has none (for example caller supplied XML).
func BindingTemplate(doc *etree.Document) string {
	if doc == nil {
		return ""
	}
	binding := doc.FindElement("//binding")
	if binding == nil {
		return ""
	}
	return binding.SelectAttrValue("template", "")
}
