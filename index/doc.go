// Package index is the queryable universe of known packages.
//
// An Index holds package records from one or more channels together with the
// channel priority order. It answers the set-membership and one-level
// closure queries the planner is built on:
//
//   - FindCompatiblePackages: packages matching at least one spec of their name
//   - FindMatches: the subset satisfying a constraint
//   - GetDeps / GetReverseDeps: one level of dependency closure in either direction
//   - LookupFromCanonicalName / LookupFromName: exact and by-name lookup
//
// Records are loaded from conda repodata.json documents (ParseRepodata) or
// from Starlark channel manifests (ParseManifest):
//
//	channel(name = "defaults")
//
//	package(
//	    name = "numpy",
//	    version = "1.9.2",
//	    build = "py27_0",
//	    depends = ["python 2.7*"],
//	)
//
// Load combines files and http(s) repodata URLs, which are fetched through a
// Fetcher such as remote.Client.
//
// An Index is immutable after New returns and is safe for concurrent use.
package index
