// Package ecp sends commands to a Roku over its External Control Protocol.
//
// The discovery package finds the device location (for example
// "http://192.168.1.50:8060/"); this package builds requests relative to it.
// Only the search/browse command is implemented:
//
//	client := ecp.NewClient(location)
//	err := client.Search(ctx, ecp.NewSearchRequest("the office", "12"))
//
// which sends
//
//	POST http://192.168.1.50:8060/search/browse?keyword=the%20office&provider-id=12&launch=true&match-any=true
//
// Provider ids are passed through as given.
//
// # Errors
//
// Failures are returned as *ControlError, classified into network, timeout,
// connection refused, DNS, HTTP and validation errors. Retries are off by
// default because launching is not idempotent; SetRetry enables them for
// retryable errors with exponential backoff.
package ecp
