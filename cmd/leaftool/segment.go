package main

import (
	"context"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"github.com/aliffadillah/durian-leaf-classification/internal/prep"
	"github.com/aliffadillah/durian-leaf-classification/internal/segment"
)

func runSegment(cmd *commander.Command, args []string) error {
	if err := verifyFlags(cmd, []string{"in", "out"}); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	seg, err := segment.New(cfg.Segmentation.Backend, cfg.Segmentation.Thresholds.Segment())
	if err != nil {
		return err
	}
	_, err = prep.SegmentDir(context.Background(), inDir, outPath, seg, newLogger())
	return err
}

func cmdSegment() *commander.Command {
	cmd := &commander.Command{
		Run:       runSegment,
		UsageLine: "segment -in <photo dir> -out <segmented dir> [options]",
		Short:     "segments every photo of a labelled photo tree",
		Long: `
segments every photo of a labelled photo tree (one directory per class),
writing PNG copies with the background blacked out

	$ ./leaftool segment -in dataset -out segmented_dataset [-config config.yaml]

`,
		Flag: *flag.NewFlagSet("segment", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&inDir, "in", "", "Photo tree")
	cmd.Flag.StringVar(&outPath, "out", "", "Output directory")
	cmd.Flag.StringVar(&configFile, "config", "", "Config file (thresholds, backend)")
	cmd.Flag.BoolVar(&verbose, "v", false, "Log every file")
	return cmd
}
