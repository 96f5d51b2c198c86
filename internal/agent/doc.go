// Package agent assembles the pawdue runtime: configuration, store, run
// loop, scheduler, alarm coordinator, presentation queue and the console
// surface, running until the context is canceled.
package agent
