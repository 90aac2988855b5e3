// Package checker decides whether the monitored page is reachable.
//
// A page counts as available when loading it does not end on the "no access" page,
// recognized by a marker substring in the final URL. The BrowserChecker drives a
// headless Chrome through chromedp so that client-side redirects are followed; the
// HTTPChecker is a lighter alternative that follows HTTP redirects and meta refresh tags.
package checker
