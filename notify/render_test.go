package notify

import (
	"slices"
	"testing"

	"github.com/jongio/azd-toast/toast"
)

func TestSummarize(t *testing.T) {
	tst := &toast.Toast{
		Lines:  []string{"Build finished", "", "3 warnings"},
		Image:  &toast.Image{Src: "file:///C:/icons/ok.png"},
		Audio:  &toast.Audio{Src: toast.AudioMail},
		Launch: "https://example.com/run/1",
		Commands: []*toast.Command{
			{Content: "Open", Arguments: "open"},
			{Content: "Later"},
			{},
		},
	}
	doc, err := tst.Content(toast.Catalog{})
	if err != nil {
		t.Fatalf("Content() error = %v", err)
	}

	sum := summarize(doc)
	checks := []struct {
		field, got, want string
	}{
		{"Title", sum.Title, "Build finished"},
		{"Body", sum.Body, "3 warnings"},
		{"Icon", sum.Icon, "C:/icons/ok.png"},
		{"Launch", sum.Launch, "https://example.com/run/1"},
		{"Sound", sum.Sound, toast.AudioMail},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
	if sum.Silent {
		t.Error("Silent = true")
	}
	wantActions := []summaryAction{{Key: "open", Label: "Open"}, {Key: "Later", Label: "Later"}}
	if !slices.Equal(sum.Actions, wantActions) {
		t.Errorf("Actions = %+v, want %+v", sum.Actions, wantActions)
	}
}

func TestSummarize_Empty(t *testing.T) {
	sum := summarize(nil)
	if sum.Title != "" || sum.Body != "" || len(sum.Actions) != 0 {
		t.Errorf("summarize(nil) = %+v, want zero", sum)
	}
}

func TestLocalPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"file:///tmp/a.png", "/tmp/a.png"},
		{"file:///C:/a.png", "C:/a.png"},
		{"https://example.com/a.png", "https://example.com/a.png"},
		{"/usr/share/icons/a.png", "/usr/share/icons/a.png"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := localPath(tt.in); got != tt.want {
			t.Errorf("localPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFreedesktopSound(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{toast.AudioMail, "message-new-email"},
		{toast.AudioLoopingCall, "phone-incoming-call"},
		{"ms-appx:///sound.wav", "message-new-instant"},
		{"bell", "bell"},
	}
	for _, tt := range tests {
		if got := freedesktopSound(tt.in); got != tt.want {
			t.Errorf("freedesktopSound(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
