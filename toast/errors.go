package toast

import "errors"

var (
	// ErrUnsupportedLineCount is returned when a toast has fewer than one or
	// more than three lines of text.
	ErrUnsupportedLineCount = errors.New("unsupported line count")

	// ErrMalformedContent is returned when caller supplied XML cannot be parsed
	// into a document with a root element.
	ErrMalformedContent = errors.New("malformed toast content")

	// ErrMissingTemplateNode is returned when a template lacks a node the
	// content requires, such as the image slot of an image template.
	ErrMissingTemplateNode = errors.New("template node missing")

	// ErrUnknownTemplate is returned for template types outside the catalog.
	ErrUnknownTemplate = errors.New("unknown toast template")
)
