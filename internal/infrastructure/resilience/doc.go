/*
Package resilience provides a circuit breaker for calls to external
dependencies.

The review store runs every database call through a Breaker, so when
PostgreSQL is down the reviews API fails fast with ErrCircuitOpen instead
of piling up requests that each wait for a connection timeout. Rendered
pages do not depend on the store and keep working.

# Usage

	breaker := resilience.New("reviews", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	reviews, err := resilience.Call(breaker, func() ([]review.Review, error) {
		return store.List(ctx, filter)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                         Open
*/
package resilience
