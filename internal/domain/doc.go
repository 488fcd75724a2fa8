// Package domain defines the core domain types and interfaces.
//
// Book records, the filter and lookup value types, the broadcast channel names
// and the sentinel errors shared by every front end live here. No
// implementation code - just contracts.
package domain
