package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/platinummonkey/langmgr/pkg/config"
	"github.com/platinummonkey/langmgr/pkg/g2p"
)

func newListCommand(out io.Writer) *Command {
	cmd := &Command{
		Name:        "list",
		Description: "List registered G2P engines",
		Flags:       flag.NewFlagSet("list", flag.ContinueOnError),
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

		return printEngines(out, app.Manager, *jsonOut)
	}

	return cmd
}

func engineInfos(m *g2p.Manager) []g2p.Info {
	factories := m.Factories()
	infos := make([]g2p.Info, 0, len(factories))
	for _, f := range factories {
		infos = append(infos, g2p.InfoOf(f))
	}
	return infos
}

func printEngines(out io.Writer, m *g2p.Manager, asJSON bool) error {
	infos := engineInfos(m)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tVERSION\tAUTHOR\tCATEGORY")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", info.ID, info.Name, info.Version, info.Author, info.Category)
	}
	return w.Flush()
}
