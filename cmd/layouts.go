package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shouni/go-poster-kit/pkg/director"
)

// layoutsCmd は、選べるレイアウトプリセットとアーキタイプを一覧表示するのだ。
var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "レイアウトプリセットの一覧を表示するのだ。",
	RunE: func(cmd *cobra.Command, _ []string) error {
		lm, err := director.NewLayoutManager()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tKIND\tPOSITION\tFONT\tACCENT")
		for _, p := range lm.Presets() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Kind, p.Positioning, p.FontFamily, p.AccentColor)
		}
		return w.Flush()
	},
}
