// Package oscin owns a UDP OSC receiver and routes decoded messages to
// per-address and wildcard subscribers.
//
// Like the other input adapters, construction failures are soft: when
// the port cannot be bound the Server stays inactive and subscribers
// never fire, which keeps a rig usable without the collaborator that
// normally feeds it.
package oscin
