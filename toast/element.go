package toast

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// ContentElement is a unit of optional toast content that inserts itself
// into a content document. Calling AddToToastContent twice on the same
// document inserts the content twice.
type ContentElement interface {
	AddToToastContent(doc *etree.Document)
}

// GetOrCreateNamedChild returns the direct child of the document root named
// name, creating and appending it when absent. A document without a root
// element gets a toast root first.
func GetOrCreateNamedChild(doc *etree.Document, name string) *etree.Element {
	root := doc.Root()
	if root == nil {
		root = doc.CreateElement("toast")
	}
	if child := root.SelectElement(name); child != nil {
		return child
	}
	return root.CreateElement(name)
}

// ImagePlacement positions an image inside the toast.
type ImagePlacement string

const (
	PlacementInline          ImagePlacement = ""
	PlacementAppLogoOverride ImagePlacement = "appLogoOverride"
	PlacementHero            ImagePlacement = "hero"
)

// Image fills the image slot of an image template.
type Image struct {
	// Src is the image URI (file:///, ms-appx:/// or http(s)://).
	Src string
	// Alt is the alternate text used by screen readers.
	Alt string
	// Placement is empty for the template's inline slot.
	Placement ImagePlacement
	// AddImageQuery appends scale and language query parameters to Src.
	AddImageQuery bool
}

// AddToToastContent sets the attributes of the first image node. Documents
// without an image node are left unchanged.
func (i *Image) AddToToastContent(doc *etree.Document) {
	if el := imageNode(doc); el != nil {
		i.setAttributes(el)
	}
}

func (i *Image) setAttributes(el *etree.Element) {
	el.CreateAttr("src", i.Src)
	if i.Alt != "" {
		el.CreateAttr("alt", i.Alt)
	}
	if i.Placement != PlacementInline {
		el.CreateAttr("placement", string(i.Placement))
	}
	if i.AddImageQuery {
		el.CreateAttr("addImageQuery", "true")
	}
}

func imageNode(doc *etree.Document) *etree.Element {
	return doc.FindElement("//image")
}

// Well known system sounds.
const (
	AudioDefault      = "ms-winsoundevent:Notification.Default"
	AudioIM           = "ms-winsoundevent:Notification.IM"
	AudioMail         = "ms-winsoundevent:Notification.Mail"
	AudioReminder     = "ms-winsoundevent:Notification.Reminder"
	AudioSMS          = "ms-winsoundevent:Notification.SMS"
	AudioLoopingAlarm = "ms-winsoundevent:Notification.Looping.Alarm"
	AudioLoopingCall  = "ms-winsoundevent:Notification.Looping.Call"
)

var audioNames = []struct{ name, src string }{
	{"default", AudioDefault},
	{"im", AudioIM},
	{"mail", AudioMail},
	{"reminder", AudioReminder},
	{"sms", AudioSMS},
	{"looping-alarm", AudioLoopingAlarm},
	{"looping-call", AudioLoopingCall},
}

// AudioNames returns the short names accepted by ParseAudio.
func AudioNames() []string {
	names := make([]string, len(audioNames))
	for i, a := range audioNames {
		names[i] = a.name
	}
	return names
}

// ParseAudio resolves a short sound name like "mail" to its URI. Values that
// already look like a URI are returned unchanged.
func ParseAudio(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if strings.Contains(name, ":") {
		return name, true
	}
	for _, a := range audioNames {
		if strings.EqualFold(a.name, name) {
			return a.src, true
		}
	}
	return "", false
}

// Audio controls the sound played with the toast.
type Audio struct {
	Src    string
	Loop   bool
	Silent bool
}

// AddToToastContent writes the audio node under the root, creating it when
// the template does not declare one.
func (a *Audio) AddToToastContent(doc *etree.Document) {
	el := GetOrCreateNamedChild(doc, "audio")
	if a.Src != "" {
		el.CreateAttr("src", a.Src)
	}
	if a.Loop {
		el.CreateAttr("loop", strconv.FormatBool(a.Loop))
	}
	if a.Silent {
		el.CreateAttr("silent", strconv.FormatBool(a.Silent))
	}
}

// ActivationType controls what happens when an action is invoked.
type ActivationType string

const (
	ActivationDefault    ActivationType = ""
	ActivationForeground ActivationType = "foreground"
	ActivationBackground ActivationType = "background"
	ActivationProtocol   ActivationType = "protocol"
	ActivationSystem     ActivationType = "system"
)

// Command is an action button shown on the toast.
type Command struct {
	// Content is the button label.
	Content string
	// Arguments are returned to the application when the button is pressed.
	Arguments      string
	ActivationType ActivationType
	ImageURI       string
}

// DismissCommand returns a command that closes the toast without activating
// the application.
func DismissCommand(label string) *Command {
	return &Command{Content: label, Arguments: "dismiss", ActivationType: ActivationSystem}
}

// AddToToastContent appends an action entry to the actions group, creating
// the group on first use.
func (c *Command) AddToToastContent(doc *etree.Document) {
	group := GetOrCreateNamedChild(doc, "actions")
	el := group.CreateElement("action")
	el.CreateAttr("content", c.Content)
	el.CreateAttr("arguments", c.Arguments)
	if c.ActivationType != ActivationDefault {
		el.CreateAttr("activationType", string(c.ActivationType))
	}
	if c.ImageURI != "" {
		el.CreateAttr("imageUri", c.ImageURI)
	}
}

var (
	_ ContentElement = (*Image)(nil)
	_ ContentElement = (*Audio)(nil)
	_ ContentElement = (*Command)(nil)
)
