package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ayusman/gesturenote/internal/config"
)

// runModels lists stored models, newest first.
func runModels(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	models, err := st.Models().List()
	if err != nil {
		return err
	}
	if len(models) == 0 {
		fmt.Fprintln(stdout, "no models")
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATASET\tACCURACY\tTRAIN\tTEST\tTREES\tCREATED")
	for _, m := range models {
		fmt.Fprintf(w, "%s\t%s\t%.3f\t%d\t%d\t%d\t%s\n",
			m.ID, m.DatasetID, m.Accuracy, m.TrainSize, m.TestSize, m.Trees,
			m.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
