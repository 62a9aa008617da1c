// Package spec parses and evaluates package specifications.
//
// A Spec constrains a package by name and, optionally, by channel, version
// and build. The accepted forms are:
//
//	numpy                      any version
//	numpy 1.9                  version equal to 1.9 (1.9.0 also matches)
//	numpy 1.9* py27_0          version prefix and exact build
//	numpy=1.9                  version prefix 1.9*
//	numpy=1.9.2=py27_0         exact version and build
//	numpy==1.9.2               exact version
//	numpy>=1.10,<2             version range (',' is AND, '|' is OR)
//	defaults::numpy            restricted to a channel
//	numpy-1.9.2-py27_0.tar.bz2 exact package filename
//
// Version expressions support the operators ==, !=, <, <=, >, >=, ~= and a
// trailing '*' for prefix matches. Builds may contain '*' wildcards.
//
// Specs are immutable values; two specs are equal when their String forms
// are equal.
package spec
