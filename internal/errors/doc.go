// Package errors provides coded, actionable errors for the whistle CLI and
// configuration layer.
//
// Each error carries a registered code (e.g. "W101") mapping to a category,
// a short message, a longer explanation and a documentation link. Callers
// attach detail, a fix suggestion or a wrapped cause:
//
//	err := errors.New("W101").
//	    WithDetail("reconnect.baseDelay: time: invalid duration \"soon\"").
//	    WithSuggestion("Use a Go duration such as \"500ms\" or \"2s\"")
//
//	fmt.Print(err.Format())
//	// ERROR W101: Invalid configuration value
//	//
//	//   reconnect.baseDelay: time: invalid duration "soon"
//	//
//	//   Hint: Use a Go duration such as "500ms" or "2s"
//
// Protocol errors raised while applying patches are not coded errors; they
// are plain sentinels in the packages that raise them, because they are
// logged and skipped rather than shown to a user.
package errors
