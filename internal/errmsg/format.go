// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Startup
	OpInitialize   Op = "initialize"
	OpConfigLoad   Op = "load configuration"
	OpCatalogOpen  Op = "open catalog"
	OpCacheOpen    Op = "open response cache"
	OpMetricsServe Op = "serve metrics"

	// Sentence processing
	OpReadInput       Op = "read input"
	OpSegmentSentence Op = "segment sentence"

	// Catalog queries
	OpCatalogSearch Op = "search catalog"
	OpCachePurge    Op = "purge response cache"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
