// Package identity derives stable item identifiers from content keys.
//
// A content key is the URL a caller supplies for a piece of work: a GitHub
// pull request or a Pivotal Tracker story. Parse recognizes the supported URL
// shapes, Classify names the item type, and Resolve hashes the key into the
// 32 character identifier every store uses as the record key. Nothing here
// performs I/O.
package identity
