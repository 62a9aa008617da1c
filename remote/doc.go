// Package remote fetches channel repodata over HTTP.
//
// A conda channel is served as a tree of platform subdirectories, each with
// its own index:
//
//	https://conda.anaconda.org/conda-forge/
//	├── noarch/
//	│   └── repodata.json
//	└── linux-64/
//	    └── repodata.json
//
// The client fetches those documents, checks their shape before they reach
// the index parser and caches them by URL:
//
//	client := remote.NewClient()
//	data, err := client.Fetch(ctx, remote.RepodataURL("https://conda.anaconda.org/conda-forge", "linux-64"))
//	if err != nil {
//	    // network, HTTP status or validation error
//	}
package remote
