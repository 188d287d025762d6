// Package dom hosts a server-rendered HTML page in a small, browser-like
// document model built on golang.org/x/net/html.
//
// The model is deliberately narrow: it offers live XPath lookups (via
// antchfx/htmlquery), element helpers that mirror the handful of DOM
// properties form controls expose (value, checked, disabled, class list),
// document-level event delegation with capture and bubble phases, and a
// single-threaded task queue for work that completes off the event turn.
//
// Listeners are always registered on the document, never on individual
// nodes. Markup can be replaced out of band (Replace bumps the render
// generation), so consumers look nodes up at event time instead of caching
// references.
//
// A Document is owned by one goroutine. The only cross-goroutine entry point
// is Async, whose continuation is queued and executed by Drain or Settle on
// the owning goroutine.
package dom
