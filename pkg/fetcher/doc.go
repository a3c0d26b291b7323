// Package fetcher implements the per-identifier fetch protocol.
//
// A fetch moves through these steps:
//
//  1. If skipping is enabled and the artifact exists: Skipped, no requests.
//  2. Request the descriptor. Transport and HTTP failures end the fetch
//     with TransportError before the body is looked at.
//  3. A body containing "unavailable": queue a preparation request, wait
//     the prepare delay, and go back to 2.
//  4. A body containing "invalid item": Unresolvable.
//  5. Otherwise resolve the highres part, download it and store it:
//     Downloaded.
//
// The preparation loop is unbounded unless Options.MaxPrepareAttempts is
// set. Cancelling the context ends any fetch with Abandoned.
package fetcher
