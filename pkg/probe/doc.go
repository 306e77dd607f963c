// Package probe checks whether a model identifier is served by a remote
// chat-completion endpoint.
//
// A probe sends one short, length-capped completion request and folds the
// outcome into a [Result]: the model is [OutcomeAvailable], [OutcomeNotFound],
// or the call failed for another reason ([OutcomeError]). Remote failures never
// surface as Go errors; only configuration problems detected before any
// network activity (a missing credential, an empty model identifier) do.
package probe
