package toast_test

import (
	"context"
	"fmt"
	"log"

	"github.com/jongio/azd-toast/dispatch"
	"github.com/jongio/azd-toast/toast"
)

// ExampleSelectTemplate shows how the two-line templates are chosen.
func ExampleSelectTemplate() {
	balanced, _ := toast.SelectTemplate([]string{"Short", "A very long second line"}, false)
	longFirst, _ := toast.SelectTemplate([]string{"A very long first line", "Short"}, true)
	_, err := toast.SelectTemplate([]string{"1", "2", "3", "4"}, false)

	fmt.Println(balanced)
	fmt.Println(longFirst)
	fmt.Println(err)
	// Output:
	// ToastText02
	// ToastImageAndText03
	// unsupported line count: got 4 lines, want 1 to 3
}

// ExampleToast_Content builds a document without showing it.
func ExampleToast_Content() {
	t := &toast.Toast{
		Lines:    []string{"Build finished", "3 warnings"},
		Commands: []*toast.Command{{Content: "Open log", Arguments: "log"}},
	}

	doc, err := t.Content(toast.Catalog{})
	if err != nil {
		log.Fatal(err)
	}

	for _, el := range doc.FindElements("//text") {
		fmt.Println(el.Text())
	}
	fmt.Println(len(doc.FindElements("//actions/action")))
	// Output:
	// Build finished
	// 3 warnings
	// 1
}

// ExampleNotification demonstrates showing a toast and receiving callbacks on
// a dedicated goroutine.
func ExampleNotification() {
	var service toast.Service // e.g. from notify.New

	q := dispatch.NewQueue(8)
	defer q.Close()

	n := toast.New(service, "Contoso.App")
	n.Lines = []string{"Deployment complete"}
	n.Launch = "deployment:42"
	n.Context = q
	n.OnActivated = func(_ *toast.Notification, e toast.ActivatedEventArgs) {
		fmt.Println("activated:", e.Arguments)
	}

	if service != nil {
		if err := n.Show(context.Background()); err != nil {
			log.Printf("show failed: %v", err)
		}
	}
}
