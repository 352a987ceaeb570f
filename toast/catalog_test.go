package toast

import (
	"errors"
	"testing"
)

func TestTemplateContentSlots(t *testing.T) {
	for _, tt := range Templates() {
		t.Run(tt.String(), func(t *testing.T) {
			doc, err := Catalog{}.TemplateContent(tt)
			if err != nil {
				t.Fatalf("TemplateContent(%s) failed: %v", tt, err)
			}

			if got := doc.Root().Tag; got != "toast" {
				t.Errorf("root = %q, want toast", got)
			}
			if got := len(doc.FindElements("//text")); got != tt.LineCount() {
				t.Errorf("text slots = %d, want %d", got, tt.LineCount())
			}
			wantImages := 0
			if tt.HasImage() {
				wantImages = 1
			}
			if got := len(doc.FindElements("//image")); got != wantImages {
				t.Errorf("image slots = %d, want %d", got, wantImages)
			}
			if got := BindingTemplate(doc); got != tt.String() {
				t.Errorf("BindingTemplate() = %q, want %q", got, tt.String())
			}
		})
	}
}

func TestTemplateContentReturnsIndependentDocuments(t *testing.T) {
	a, err := TemplateContent(ToastText01)
	if err != nil {
		t.Fatal(err)
	}
	b, err := TemplateContent(ToastText01)
	if err != nil {
		t.Fatal(err)
	}

	a.FindElement("//text").CreateText("changed")
	if got := b.FindElement("//text").Text(); got != "" {
		t.Errorf("second document was modified: %q", got)
	}
}

func TestTemplateContentUnknown(t *testing.T) {
	_, err := TemplateContent(TemplateUnknown)
	if !errors.Is(err, ErrUnknownTemplate) {
		t.Errorf("expected ErrUnknownTemplate, got %v", err)
	}
}

func TestBindingTemplateWithoutBinding(t *testing.T) {
	doc, err := ParseContent(`<toast><audio/></toast>`)
	if err != nil {
		t.Fatal(err)
	}
	if got := BindingTemplate(doc); got != "" {
		t.Errorf("BindingTemplate() = %q, want empty", got)
	}
	if got := BindingTemplate(nil); got != "" {
		t.Errorf("BindingTemplate(nil) = %q, want empty", got)
	}
}
