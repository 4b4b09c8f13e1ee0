// Package horizon finds the smallest IP hop count at which a TCP connection to a
// destination either completes or is definitively refused by the network.
//
// Instead of sweeping TTLs linearly like traceroute it searches them: a [Resolver]
// fixes the source and destination addresses once, a [Prober] makes single
// connection attempts with the hop limit set through x/sys/unix, and [NextProbe]
// proposes the next TTL as the geometric mean of the current bounds, which favors
// the small hop counts most destinations are at.
//
// Network failures during a probe are data: an [Outcome] carries the errno and
// the caller decides what it means. [IsUnreachable] separates host-unreachable,
// which ends the search downwards, from a timeout, which pushes it upwards.
// Resolution failures on the other hand are typed errors such as
// [UnknownHostError] and [NoRouteError].
//
// Typical usage:
//
//	client := horizon.NewClient()
//	opts   := horizon.DefaultOptions()
//	res, err := client.Search(ctx, horizon.Target{Host: "example.com", Service: "443"}, &opts)
//	// res.Horizon is the hop count, res.Steps every probe sent
//
// The building blocks can also be driven by hand:
//
//	route, err := horizon.Resolve(ctx, "192.0.2.1", "80", horizon.IPv4, "")
//	low, high := 1, 31 // TTL 1 is known to time out
//	for high-low > 1 {
//		ttl := horizon.NextProbe(low, high)
//		out := horizon.Probe(ctx, route, ttl, time.Second)
//		if out.TimedOut() {
//			low = ttl
//		} else {
//			high = ttl
//		}
//	}
package horizon
