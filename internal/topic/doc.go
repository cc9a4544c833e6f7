// Package topic implements a bounded, lossy broadcast channel.
//
// A Topic fans every published message out to all current subscribers.
// Subscribers only observe messages published after they subscribed; there
// is no replay. Each subscriber has a fixed-depth buffer, and a subscriber
// whose buffer is full at publish time is evicted rather than blocking the
// publisher (slow-consumer disconnect).
package topic
