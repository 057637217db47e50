// Package liftmap keeps a local exercise catalog in step with an external
// exercise document.
//
// A Client pulls the document through an ordered chain of sources, normalizes
// every raw record into one canonical shape, validates and deduplicates the
// batch, and merges it into the store in a single transaction. Records an
// editor owns are never touched. After an import the relationship linker
// fills in progressions and regressions that are still empty.
//
// Example usage:
//
//	st, err := sqlite.Open(ctx, "liftmap.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
//	lm, err := liftmap.New(liftmap.WithStore(st))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Register event hooks
//	lm.OnExerciseInserted(func(ex catalogs.Exercise) {
//	    log.Printf("New exercise: %s", ex.Name)
//	})
//
//	// Seed on startup; a full import only runs when it is warranted
//	result, err := lm.SeedExercisesIfNeeded(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary())
//
//	// Force a fresh import, skipping the write when nothing changed
//	result, err = lm.ImportExercises(ctx, liftmap.WithOnlyIfChanged(true))
package liftmap

import (
	"github.com/agentstation/liftmap/pkg/sources"
)

// Compile-time interface checks to ensure proper implementation.
var (
	_ Client         = (*client)(nil)
	_ Importer       = (*client)(nil)
	_ Repairer       = (*client)(nil)
	_ LinkRecomputer = (*client)(nil)
	_ Seeder         = (*client)(nil)
	_ Diagnoser      = (*client)(nil)
)

// Client runs the exercise catalog pipeline against one store.
//
// Operations are single-flight by contract: callers must not start a second
// mutating operation while one is running. Dry runs and diagnostics only
// read and may run at any time.
type Client interface {

	// Importer runs full catalog imports
	Importer

	// Repairer fixes already persisted records in place
	Repairer

	// LinkRecomputer runs the relationship linker on its own
	LinkRecomputer

	// Seeder bootstraps the catalog on startup
	Seeder

	// Diagnoser reports the seed state and live catalog counts
	Diagnoser

	// Hooks provides access to event callback registration
	Hooks
}

// client is the internal implementation of the Client interface.
type client struct {

	// options are the configured options for the client
	options *options

	// chain is the retrieval chain for catalog payloads
	chain *sources.Chain

	*hooks
}

// New creates a new Client. WithStore is required.
func New(opts ...Option) (Client, error) {
	options, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	c := &client{
		options: options,
		hooks:   newHooks(),
	}

	chainOpts := []sources.ChainOption{sources.WithPolicy(options.policy)}
	if rec := options.metrics; rec != nil {
		chainOpts = append(chainOpts, sources.WithAttemptObserver(func(id sources.ID, attempt int, err error) {
			rec.SourceAttempt(id.String(), attempt, err)
		}))
	}
	c.chain = sources.NewChain(options.sources, chainOpts...)

	return c, nil
}
