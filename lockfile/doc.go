// Package lockfile reads and writes condaplan.lock files.
//
// A lockfile records the exact builds linked into an environment, with the
// channel each came from and the prefix's pins, so that the same
// environment can be planned again later or on another machine.
//
// # Usage
//
// Lock an existing prefix:
//
//	env, err := environment.Load("/opt/envs/py27")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	lf := lockfile.FromEnvironment(env, ix.Channels())
//	if err := lf.WriteFile(lockfile.DefaultPath(env.Prefix())); err != nil {
//	    log.Fatal(err)
//	}
//
// Recreate it elsewhere:
//
//	lf, err := lockfile.ReadFile("condaplan.lock")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	plan, err := planner.Create("/opt/envs/copy", lf.Specs())
//
// # Compatibility
//
// Files carry a lockFileVersion. Only CurrentVersion is read; other versions
// fail with ErrUnsupportedVersion.
package lockfile
