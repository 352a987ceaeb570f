package notify

import (
	"net/url"
	"strings"

	"github.com/beevik/etree"
)

// summary is the flattened view of a toast document for services that do not
// understand toast XML.
type summary struct {
	Title   string
	Body    string
	Icon    string
	Launch  string
	Sound   string
	Silent  bool
	Loop    bool
	Actions []summaryAction
}

type summaryAction struct {
	Key   string
	Label string
}

func summarize(doc *etree.Document) summary {
	var s summary
	if doc == nil || doc.Root() == nil {
		return s
	}
	root := doc.Root()

	var lines []string
	for _, el := range doc.FindElements("//text") {
		if t := strings.TrimSpace(el.Text()); t != "" {
			lines = append(lines, t)
		}
	}
	if len(lines) > 0 {
		s.Title = lines[0]
		s.Body = strings.Join(lines[1:], "\n")
	}

	if img := doc.FindElement("//image"); img != nil {
		s.Icon = localPath(img.SelectAttrValue("src", ""))
	}

	s.Launch = root.SelectAttrValue("launch", "")

	if audio := root.SelectElement("audio"); audio != nil {
		s.Sound = audio.SelectAttrValue("src", "")
		s.Silent = audio.SelectAttrValue("silent", "") == "true"
		s.Loop = audio.SelectAttrValue("loop", "") == "true"
	}

	for _, a := range doc.FindElements("//actions/action") {
		label := a.SelectAttrValue("content", "")
		key := a.SelectAttrValue("arguments", "")
		if key == "" {
			key = label
		}
		if key == "" {
			continue
		}
		s.Actions = append(s.Actions, summaryAction{Key: key, Label: label})
	}
	return s
}

// localPath converts file URIs to filesystem paths and leaves anything else
// unchanged.
func localPath(src string) string {
	if !strings.HasPrefix(strings.ToLower(src), "file:") {
		return src
	}
	u, err := url.Parse(src)
	if err != nil || u.Path == "" {
		return src
	}
	p := u.Path
	// file:///C:/x parses to /C:/x
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return p
}

// freedesktopSound maps system sound URIs to freedesktop sound theme names.
func freedesktopSound(src string) string {
	switch src {
	case "":
		return ""
	case "ms-winsoundevent:Notification.Mail":
		return "message-new-email"
	case "ms-winsoundevent:Notification.Reminder", "ms-winsoundevent:Notification.Looping.Alarm":
		return "alarm-clock-elapsed"
	case "ms-winsoundevent:Notification.Looping.Call":
		return "phone-incoming-call"
	case "ms-winsoundevent:Notification.Default", "ms-winsoundevent:Notification.IM", "ms-winsoundevent:Notification.SMS":
		return "message-new-instant"
	default:
		if strings.HasPrefix(src, "ms-") {
			return "message-new-instant"
		}
		return src
	}
}
