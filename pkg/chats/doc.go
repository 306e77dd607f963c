// Package chats provides the provider-agnostic message model used to talk to
// chat-completion endpoints.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/modelprobe/pkg/chats/role]: conversation roles (system, user, assistant)
//   - [github.com/germanamz/modelprobe/pkg/chats/message]: a single text message with a role
//
// No provider or API code is included. Adapters in pkg/providers translate
// these types to and from their wire formats.
package chats
