package list

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	mpctx "mediaproc.dev/cli/internal/context"
	"mediaproc.dev/cli/internal/flags/enum"
	"mediaproc.dev/cli/internal/plugin/registry"
)

const (
	FlagOutput = "output"
	FlagFailed = "failed"
)

// row is the serializable view of one plugin, loaded or failed.
type row struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Tier    string `json:"tier"`
	BuiltIn bool   `json:"builtIn,omitempty"`
	Source  string `json:"source,omitempty"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List loaded plugins",
		Long: `List the plugins loaded in this invocation. With --failed the plugins
that were attempted but failed to load are included as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := mpctx.FromContext(cmd.Context()).PluginManager()
			if manager == nil {
				return fmt.Errorf("plugin manager is not available")
			}
			withFailed, err := cmd.Flags().GetBool(FlagFailed)
			if err != nil {
				return err
			}

			rows := make([]row, 0)
			for _, rec := range manager.Records() {
				rows = append(rows, row{
					Name:    rec.CanonicalName,
					Version: rec.Version,
					Tier:    string(registry.TierOf(rec.CanonicalName)),
					BuiltIn: rec.BuiltIn,
					Source:  rec.Source,
					Status:  "loaded",
				})
			}
			if withFailed {
				for name, reason := range manager.Failed() {
					rows = append(rows, row{
						Name:   name,
						Tier:   string(registry.TierOf(name)),
						Status: "error",
						Error:  reason,
					})
				}
			}

			output, err := enum.Get(cmd.Flags(), FlagOutput)
			if err != nil {
				return fmt.Errorf("getting output flag failed: %w", err)
			}
			reader, err := encodeRows(output, rows)
			if err != nil {
				return err
			}
			_, err = io.Copy(cmd.OutOrStdout(), reader)
			return err
		},
	}

	enum.Var(cmd.Flags(), FlagOutput, []string{"table", "json", "yaml"}, "output format of the plugin list")
	cmd.Flags().Bool(FlagFailed, false, "include plugins that failed to load")

	return cmd
}

func encodeRows(output string, rows []row) (io.Reader, error) {
	var data []byte
	var err error
	switch output {
	case "json":
		data, err = json.MarshalIndent(rows, "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(rows)
	case "table":
		data, err = encodeRowsAsTable(rows)
	default:
		err = fmt.Errorf("unknown output format: %q", output)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding plugin list as %q failed: %w", output, err)
	}
	return bytes.NewReader(data), nil
}

func encodeRowsAsTable(rows []row) ([]byte, error) {
	if len(rows) == 0 {
		return []byte("no plugins loaded\n"), nil
	}
	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"Plugin", "Version", "Tier", "Status", "Source"})
	for _, r := range rows {
		status := color.GreenString(r.Status)
		source := r.Source
		if r.Status != "loaded" {
			status = color.RedString(r.Status)
			source = r.Error
		}
		t.AppendRow(table.Row{r.Name, r.Version, r.Tier, status, source})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return buf.Bytes(), nil
}
