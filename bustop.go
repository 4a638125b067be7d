// Package bustop reads a Discuz-style forum: its thread listing and the
// paginated post stream of each thread. It turns raw page HTML into typed
// records (articles, talks, replies, quotes) and keeps a local archive of
// what it has read.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, rod/).
package bustop
