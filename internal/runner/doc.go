// Package runner provides the traffic driver for rtbload.
//
// A [Runner] repeats one cycle until its context is done:
//   - launch exactly Concurrency requests at once
//   - wait for all of them to return (the batch barrier)
//   - sleep Concurrency/RatePerSecond seconds
//
// The throughput this yields is roughly RatePerSecond, delivered in bursts
// rather than evenly spaced. [PacingSmooth] swaps the burst for a token
// bucket when that is wanted instead.
//
// # Basic Usage
//
//	r := runner.New(runner.Options{
//		Concurrency:   20,
//		RatePerSecond: 100,
//		Requester:     myRequester,
//	})
//	result := r.Run(ctx)
//
// # Failure Isolation
//
// A failing or panicking request never stops its batch, its siblings, or
// the loop; failures are only counted in [Result.Errors]. Use [WithLogging]
// to report them and [Classify] to map raw client errors onto
// [TransportError], [TimeoutError], [HTTPError] and [UnexpectedError].
package runner
