package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"github.com/aliffadillah/durian-leaf-classification/internal/dataset"
	"github.com/aliffadillah/durian-leaf-classification/internal/glcm"
	"github.com/aliffadillah/durian-leaf-classification/internal/prep"
)

func runExtract(cmd *commander.Command, args []string) error {
	if err := verifyFlags(cmd, []string{"in", "out"}); err != nil {
		return err
	}
	d, _, err := prep.ExtractDir(context.Background(), inDir, glcm.Extractor{}, newLogger())
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("can't create %s: %w", outPath, err)
	}
	if err := dataset.WriteCSV(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func cmdExtract() *commander.Command {
	cmd := &commander.Command{
		Run:       runExtract,
		UsageLine: "extract -in <segmented dir> -out <features.csv>",
		Short:     "computes the GLCM descriptor of every segmented photo",
		Long: `
computes the GLCM descriptor of every segmented photo and writes the
reference dataset CSV (contrast, correlation, energy, homogeneity, label)

	$ ./leaftool extract -in segmented_dataset -out glcm_features.csv

`,
		Flag: *flag.NewFlagSet("extract", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&inDir, "in", "", "Segmented photo tree")
	cmd.Flag.StringVar(&outPath, "out", "", "Output CSV")
	cmd.Flag.BoolVar(&verbose, "v", false, "Verbose logging")
	return cmd
}
