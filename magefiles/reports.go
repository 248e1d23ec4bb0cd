//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Reports groups targets that run the CLI against the live sources.
type Reports mg.Namespace

// Views runs the configured views and downloads batch and records it.
func (Reports) Views() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath, "views", "batch", "--record")
}

// Stats counts ORA records per day of every date field since 2007 and
// saves the totals.
func (Reports) Stats() error {
	mg.Deps(Build, Init)
	for _, field := range []string{"timestamp", "creationDate", "modifiedDate"} {
		if err := sh.RunV(binPath, "stats", "--field", field, "--start-year", "2007",
			"--level", "months", "--fetch", "--save"); err != nil {
			return err
		}
	}
	return nil
}

// Export writes the store to YAML and JSON.
func (Reports) Export() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "export")
}
