// Package config defines agent settings and provides helpers to load,
// validate and save them in YAML format.
//
// The Config type holds the store location and the timing knobs used by the
// scheduler, coordinator and presentation queue.
package config
