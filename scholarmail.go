// Package scholarmail extracts structured bibliographic records from
// Google Scholar alert emails. It decomposes the heterogeneous HTML
// bodies of alert messages into paper records, optionally enriches each
// record via an external search lookup, and appends the results to a
// line-delimited JSON record store.
//
// This package contains domain types and interfaces following Ben
// Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., goquery/,
// imap/, serpapi/).
package scholarmail
