// Package streamguard is a deterministic, streaming-first guardrail engine
// for inspecting text chunk by chunk and emitting a forward-only verdict:
// permit, suppress, or substitute.
//
// # Core principles
//
//   - Streaming-first: verdicts are produced incrementally, without
//     buffering the full output.
//   - Deterministic: the same chunk sequence always produces the same
//     sequence of decisions.
//   - Linear time, constant space per rule: no backtracking, no global
//     buffering, bounded carry buffers.
//
// # Example
//
//	eng, err := streamguard.New(streamguard.WithScoreThreshold(10))
//	seq, err := rules.ForbiddenSequenceGapsAllowed([]string{"how", "to", "hack"}, "security threat")
//	eng.Register(seq)
//	eng.Register(rules.Email("email address detected"))
//
//	decision := eng.Feed("how to hack a server")
//	switch {
//	case decision.IsPermit():
//		// forward chunk downstream
//	case decision.IsSuppress():
//		// drop the stream, decision.Reason() explains why
//	case decision.IsSubstitute():
//		// emit decision.Replacement() instead of the chunk
//	}
package streamguard
