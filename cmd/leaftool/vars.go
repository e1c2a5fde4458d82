package main

import (
	"fmt"

	"github.com/gonuts/commander"

	"github.com/aliffadillah/durian-leaf-classification/internal/config"
	"github.com/aliffadillah/durian-leaf-classification/internal/logger"
)

var (
	configFile string
	inDir      string
	outPath    string
	csvPath    string
	verbose    bool
)

// verifyFlags fails when a required flag was left empty.
func verifyFlags(cmd *commander.Command, required []string) error {
	for _, name := range required {
		f := cmd.Flag.Lookup(name)
		if f == nil || f.Value.String() == "" {
			cmd.Usage()
			return fmt.Errorf("required flag -%s not set", name)
		}
	}
	return nil
}

func loadConfig() (config.Config, error) {
	return config.Load(configFile)
}

func newLogger() *logger.Manager {
	lg, err := logger.New("", verbose)
	if err != nil {
		return logger.Discard()
	}
	return lg
}
