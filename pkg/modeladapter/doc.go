// Package modeladapter defines the interfaces and shared HTTP plumbing for
// chat-completion adapters.
//
// It contains:
//   - [Completer] and [ModelLister] interfaces
//   - the embeddable [ModelAdapter] base struct with auth, custom headers,
//     request IDs, JSON helpers and usage tracking
//   - typed HTTP failures ([StatusError], [RateLimitError])
//   - [LoggingCompleter], a logrus-backed decorator for any Completer
//   - [github.com/germanamz/modelprobe/pkg/modeladapter/usage]: thread-safe token usage tracker
//
// This package contains no provider-specific code. Concrete adapters live in
// pkg/providers and import modeladapter.
package modeladapter
