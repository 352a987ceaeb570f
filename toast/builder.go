package toast

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/jongio/azd-toast/logutil"
)

var log = logutil.NewLogger("toast")

// Toast is the declarative description of a toast. Fields may be changed
// between builds; each build reads their current values.
type Toast struct {
	// Lines holds one to three lines of text: a title followed by body lines.
	Lines []string

	// Image selects the image templates when set.
	Image *Image

	Audio *Audio

	// Commands are added in order. Nil entries are skipped.
	Commands []*Command

	// Launch is returned to the application on activation. Blank values are
	// not written.
	Launch string

	// ExpirationTime is the absolute time after which the service stops
	// showing the toast.
	ExpirationTime *time.Time
}

// Template returns the template selected for the current lines and image.
func (t *Toast) Template() (TemplateType, error) {
	return SelectTemplate(t.Lines, t.Image != nil)
}

// Content builds the content document from a fresh template obtained from src.
func (t *Toast) Content(src TemplateSource) (*etree.Document, error) {
	tt, err := t.Template()
	if err != nil {
		return nil, err
	}

	doc, err := src.TemplateContent(tt)
	if err != nil {
		return nil, fmt.Errorf("get template %s: %w", tt, err)
	}
	if doc == nil || doc.Root() == nil {
		return nil, fmt.Errorf("%w: template %s has no root element", ErrMissingTemplateNode, tt)
	}

	for i, el := range doc.FindElements("//text") {
		if i >= len(t.Lines) {
			break
		}
		el.CreateText(t.Lines[i])
	}

	if t.Image != nil {
		el := imageNode(doc)
		if el == nil {
			return nil, fmt.Errorf("%w: template %s has no image node", ErrMissingTemplateNode, tt)
		}
		t.Image.setAttributes(el)
	}

	if t.Audio != nil {
		t.Audio.AddToToastContent(doc)
	}

	for _, c := range t.Commands {
		if c != nil {
			c.AddToToastContent(doc)
		}
	}

	if strings.TrimSpace(t.Launch) != "" {
		doc.Root().CreateAttr("launch", t.Launch)
	}

	if logutil.IsDebugEnabled() {
		xml, _ := doc.WriteToString()
		log.Debug("toast content built", "template", tt.String(), "xml", xml)
	}
	return doc, nil
}

// ParseContent parses caller supplied toast XML. The caller is responsible
// for its structure; only well-formedness is checked.
func ParseContent(xml string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedContent)
	}
	if err := checkProlog(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// checkProlog rejects anything beside the single root element other than
// whitespace, comments, processing instructions and a doctype.
func checkProlog(doc *etree.Document) error {
	roots := 0
	for _, tok := range doc.Child {
		switch tok := tok.(type) {
		case *etree.Element:
			roots++
		case *etree.CharData:
			if strings.TrimSpace(tok.Data) != "" {
				return fmt.Errorf("%w: text outside the root element", ErrMalformedContent)
			}
		case *etree.Comment, *etree.ProcInst, *etree.Directive:
		default:
			return fmt.Errorf("%w: unexpected %T at top level", ErrMalformedContent, tok)
		}
	}
	if roots != 1 {
		return fmt.Errorf("%w: %d root elements", ErrMalformedContent, roots)
	}
	return nil
}
