// Package connection paces requests on a broker connection.
//
// When consecutive reads time out the wrangler slows down with exponential
// backoff instead of hammering the broker:
//
//  1. Initial delay: the loop's yield interval (500ms by default)
//  2. Exponential increase: 1s, 2s, 4s, ...
//  3. Maximum delay: configurable, 30 seconds by default
//  4. Reset to the initial delay after any completed round trip
//
// # Jitter
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
package connection
