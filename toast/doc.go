// Package toast builds desktop toast notification content and shows it
// through a notification service.
//
// A Toast describes the content declaratively: one to three lines of text,
// an optional image, optional audio, optional action commands and an optional
// launch argument. Content selects the matching legacy template
// (ToastText01..04 or ToastImageAndText01..04), fills its text slots and lets
// each content element insert itself into the XML document.
//
// A Notification wraps a Toast with an application id and a Service. Show
// submits the built document, Hide withdraws it, and lifecycle callbacks
// (activated, dismissed, failed) raised by the service are forwarded to the
// caller, optionally through a dispatch.Context.
//
// # Basic Usage
//
//	n := toast.New(service, "Contoso.App")
//	n.Lines = []string{"Build finished", "3 warnings"}
//	n.Audio = &toast.Audio{Src: toast.AudioDefault}
//	n.Launch = "build:42"
//	n.OnActivated = func(_ *toast.Notification, e toast.ActivatedEventArgs) {
//	    fmt.Println("activated with", e.Arguments)
//	}
//	if err := n.Show(ctx); err != nil {
//	    return err
//	}
package toast
