// Package perfecthash builds minimal perfect hash functions (MPHFs) for a
// fixed set of string keys with one of five classic randomized graph
// constructions.
//
// A minimal perfect hash function maps the m keys of its build set onto
// [0, m) without collisions. Construction is a Las Vegas search: each
// algorithm draws fresh random hash functions per trial, rejects trials
// whose random graph is unsuitable, and grows the table when a full trial
// budget fails.
//
// # Algorithms
//
//   - AlgoCHM: acyclic random graph on n ~ 1.7m nodes; order preserving,
//     Lookup returns each key's payload.
//   - AlgoBMZ: random graph on n ~ 1.3m nodes whose 2-core may contain cycles.
//   - AlgoBDZ2: peelable bipartite graph.
//   - AlgoBDZ3: peelable 3-uniform hypergraph over three node ranges of
//     about 0.4m nodes each.
//   - AlgoCHD: bucket-and-displace with one seed per bucket.
//
// # Basic Usage
//
// Building a function:
//
//	ks, err := perfecthash.KeySetFromList([]string{"a", "b", "c"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fn, err := perfecthash.Build(ctx, ks, perfecthash.WithAlgorithm(perfecthash.AlgoBDZ3))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := fn.Save("keys.mph"); err != nil {
//	    log.Fatal(err)
//	}
//
// Querying a saved function:
//
//	fn, err := perfecthash.Open("keys.mph")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer fn.Close()
//
//	idx, err := fn.Lookup("b")
//
// # Package Structure
//
//   - Public API: keyset.go (KeySet), builder.go (Build and the table size
//     search), function.go (Open, Lookup, Value, Verify)
//   - Configuration: builder_options.go (BuildOption, With* functions)
//   - Serialization: header.go (header, footer), function_writer.go (Save, WriteTo)
//   - Algorithms: internal/algo, built on internal/graph, internal/unionfind,
//     internal/bfs, internal/hashfn and internal/randsrc
//   - Platform: fallocate_*.go, fadvise_*.go, prefault_*.go
//   - Datasets and CLI: internal/dataset (JSON key sets), cmd/mphgen
package perfecthash
