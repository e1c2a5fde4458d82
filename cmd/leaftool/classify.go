package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"github.com/aliffadillah/durian-leaf-classification/internal/bootstrap"
	"github.com/aliffadillah/durian-leaf-classification/internal/leafimage"
)

func runClassify(cmd *commander.Command, args []string) error {
	if len(args) != 1 {
		cmd.Usage()
		return fmt.Errorf("expected one image path, got %d", len(args))
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	p, cleanup, err := bootstrap.Pipeline(ctx, cfg, newLogger())
	if err != nil {
		return err
	}
	defer cleanup()

	img, err := leafimage.DecodeFile(args[0])
	if err != nil {
		return err
	}
	res, err := p.Run(ctx, img)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func cmdClassify() *commander.Command {
	cmd := &commander.Command{
		Run:       runClassify,
		UsageLine: "classify [-config config.yaml] <image>",
		Short:     "classifies one photo and prints the JSON result",
		Long: `
runs one photo through the full pipeline with the artifacts named in the
config and prints the same JSON the /predict endpoint returns

	$ ./leaftool classify -config configs/config.yaml leaf.jpg

`,
		Flag: *flag.NewFlagSet("classify", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&configFile, "config", "", "Config file")
	cmd.Flag.BoolVar(&verbose, "v", false, "Verbose logging")
	return cmd
}
