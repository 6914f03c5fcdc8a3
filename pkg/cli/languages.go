package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/platinummonkey/langmgr/pkg/config"
	"github.com/platinummonkey/langmgr/pkg/language"
)

// LanguageInfo is the listing view of a descriptor
type LanguageInfo struct {
	language.Spec
	// Resolved reports whether the selected engine is registered
	Resolved bool `json:"resolved"`
}

func newLanguagesCommand(out io.Writer) *Command {
	cmd := &Command{
		Name:        "languages",
		Description: "List configured languages and their engines",
		Flags:       flag.NewFlagSet("languages", flag.ContinueOnError),
	}
	jsonOut := cmd.Flags.Bool("json", false, "Output in JSON format")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		app, err := NewApp(context.Background(), cfg, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		return printLanguages(out, app, *jsonOut)
	}

	return cmd
}

func languageInfos(app *App) []LanguageInfo {
	infos := make([]LanguageInfo, 0, len(app.Descriptors))
	for _, d := range app.Descriptors {
		_, err := language.Resolve(app.Manager, d)
		infos = append(infos, LanguageInfo{Spec: d.Spec(), Resolved: err == nil})
	}
	return infos
}

func printLanguages(out io.Writer, app *App, asJSON bool) error {
	infos := languageInfos(app)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tENABLED\tDISCARD\tENGINE\tRESOLVED")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%t\t%t\t%s\t%t\n",
			info.ID, info.DisplayName, *info.Enabled, info.DiscardResult, info.SelectedG2P, info.Resolved)
	}
	return w.Flush()
}
