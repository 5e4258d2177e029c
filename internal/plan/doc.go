// Package plan runs traffic lab tests, singly or as a batch from a YAML plan.
//
// # Plan Format
//
//	name: nightly
//	description: "Scan the lab host, then load it"
//	continue_on_error: false
//	steps:
//	  - kind: nmap
//	    target: 10.0.0.5
//	  - kind: load
//	    url: http://10.0.0.5:8000/
//	    requests: 200
//	  - kind: capacity
//	    url: http://10.0.0.5:8000/
//	    ladder: [10, 25, 50, 100]
//
// # Step Kinds
//
//   - nmap: target
//   - load: url, requests (default 50)
//   - capacity: url, and either steps (a single number) or ladder (a list;
//     default [10, 25, 50, 100])
//   - ping: no fields
//   - ping-stats: target, count (default 4)
//   - traceroute: target, max_hops (default 20)
//   - dns: hostname
//
// Every executed step is appended to the history as a history.Record,
// whether it succeeded or failed.
package plan
