// Package beans implements a name-keyed dependency-injection container.
//
// A Factory holds bean definitions (declarative metadata describing how to
// produce an instance) keyed by unique names, materializes instances on
// demand, and resolves typed dependencies against the set of registered
// beans. Resolution handles ambiguity through a fixed tie-break order:
// primary flag, lowest priority value, then name matching.
//
// Basic usage:
//
//	factory := beans.New()
//
//	factory.RegisterDefinition("store", beans.NewDefinition(NewStore))
//	factory.RegisterDefinition("server", beans.NewDefinition(NewServer))
//
//	if err := factory.PreInstantiateSingletons(); err != nil {
//	    log.Fatal(err)
//	}
//
//	server, err := beans.Get[*Server](factory)
//
// Definitions may be singletons (one shared instance per factory) or
// prototypes (a fresh instance per lookup), lazy or eager, and may opt out
// of type-based autowiring. Constructor parameters are resolved
// recursively through the same engine, so a constructor declares its
// dependencies simply by accepting them.
//
// Factories form hierarchies: lookups and candidate scans consult the
// parent chain, and a locally defined bean wins over an inherited one.
package beans
