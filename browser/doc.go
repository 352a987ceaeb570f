// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package browser opens toast launch arguments in the user's default browser.
//
// Only http and https URLs are opened. Activation arguments that are not URLs
// are ignored, so the hook can be attached to any toast:
//
//	n.OnActivated = browser.OpenOnActivate(browser.TargetDefault)
package browser
