package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/platinummonkey/langmgr/pkg/config"
)

func newConvertCommand(out io.Writer) *Command {
	cmd := &Command{
		Name:        "convert",
		Description: "Convert words with a language's selected engine",
		Flags:       flag.NewFlagSet("convert", flag.ContinueOnError),
	}
	lang := cmd.Flags.String("lang", "", "Language id (all enabled languages when empty)")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		words := cmd.Flags.Args()
		if len(words) == 0 {
			return fmt.Errorf("no words to convert")
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := NewApp(ctx, cfg, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		return runConvert(ctx, out, app, *lang, words)
	}

	return cmd
}

func runConvert(ctx context.Context, out io.Writer, app *App, lang string, words []string) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	if lang == "" {
		outputs, err := app.Processor.ProcessAll(ctx, app.Descriptors, words)
		if err != nil {
			return err
		}
		return enc.Encode(outputs)
	}

	d, ok := app.Language(lang)
	if !ok {
		return fmt.Errorf("unknown language: %s", lang)
	}

	// The output carries the failure too, so print it before returning err
	output, err := app.Processor.Process(ctx, d, words)
	if encErr := enc.Encode(output); encErr != nil {
		return encErr
	}
	return err
}
