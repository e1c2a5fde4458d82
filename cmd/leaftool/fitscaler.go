package main

import (
	"log"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"github.com/aliffadillah/durian-leaf-classification/internal/dataset"
	"github.com/aliffadillah/durian-leaf-classification/internal/feature"
)

func runFitScaler(cmd *commander.Command, args []string) error {
	if err := verifyFlags(cmd, []string{"csv", "out"}); err != nil {
		return err
	}
	d, err := dataset.LoadCSV(csvPath)
	if err != nil {
		return err
	}
	s, err := feature.FitScaler(d.Descriptors())
	if err != nil {
		return err
	}
	if err := s.Save(outPath); err != nil {
		return err
	}
	log.Printf("Scaler fitted on %d records: mean %v, std %v", d.Len(), s.Mean, s.Std)
	return nil
}

func cmdFitScaler() *commander.Command {
	cmd := &commander.Command{
		Run:       runFitScaler,
		UsageLine: "fitscaler -csv <features.csv> -out <scaler.json>",
		Short:     "fits z-score scaling parameters on a reference dataset",
		Long: `
fits per-dimension mean and population standard deviation on a reference
dataset and writes them as scaler JSON

	$ ./leaftool fitscaler -csv glcm_features.csv -out models/scaler.json

`,
		Flag: *flag.NewFlagSet("fitscaler", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&csvPath, "csv", "", "Reference dataset CSV")
	cmd.Flag.StringVar(&outPath, "out", "", "Output scaler JSON")
	return cmd
}
