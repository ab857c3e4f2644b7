// Package client normalizes HTTP exchanges into a uniform [Result].
//
// # Transports
//
// A [Transport] sends one [Call] and reports failures as one of the three
// [Failure] types: [ServerError], [NetworkError] or [RequestBuildError].
// [Build] creates the [net/http] backed [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("myapp/1.0"),
//		client.WithThrottle(10, 5),
//	)
//
// For a resty backed transport see the
// [github.com/adamwoolhether/normhttp/client/restytransport] package.
//
// # Verbs
//
// [Get], [Post], [Put], [Delete] and [PostMultipart] take the transport as
// a parameter and always return a *Result, never an error:
//
//	res := client.Get(ctx, c, "https://api.github.com/users",
//		client.WithParams(map[string]string{"per_page": "5"}),
//	)
//	if !res.OK {
//		log.Printf("%s: %s", res.Kind(), res.StatusText)
//	}
//	next := res.Links.Next
//
// Successful GET results carry the pagination relations of the Link header
// in Result.Links. Failed results carry an all-empty LinkSet.
//
// # Failures
//
// [Classify] turns a failure into a Result. Which fields are populated
// tells the kinds apart, see [Result.Kind]: Status is set for server
// errors, Code for network errors, neither for request build errors.
package client
