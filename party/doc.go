// Package party holds the in-memory party store. Parties are a simple
// create-and-store feature exposed through the administrative HTTP surface;
// they carry no protocol state and do not survive a process restart.
package party
