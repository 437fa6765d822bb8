// Package requestctx carries per-call identifiers through context.Context.
//
// The engine stamps each operation with a correlation id, the operation name,
// and the item id once it is known; the logging package reads them back to
// tag log lines without threading extra parameters through every layer.
package requestctx
