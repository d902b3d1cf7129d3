package info

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	mpctx "mediaproc.dev/cli/internal/context"
	"mediaproc.dev/cli/internal/flags/enum"
	"mediaproc.dev/cli/internal/pkgmgr"
	"mediaproc.dev/cli/internal/plugin/registry"
)

const (
	FlagOutput = "output"
	FlagGlobal = "global"
)

// details is the serializable view of everything known about one plugin.
type details struct {
	Name               string   `json:"name"`
	CanonicalName      string   `json:"canonicalName"`
	Tier               string   `json:"tier"`
	Description        string   `json:"description,omitempty"`
	Category           string   `json:"category,omitempty"`
	Aliases            []string `json:"aliases,omitempty"`
	SystemRequirements []string `json:"systemRequirements,omitempty"`
	Keywords           []string `json:"keywords,omitempty"`
	InstallStatus      string   `json:"installStatus"`
	Loaded             bool     `json:"loaded"`
	Version            string   `json:"version,omitempty"`
	Source             string   `json:"source,omitempty"`
	Commands           []string `json:"commands,omitempty"`
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "info {plugin}",
		Aliases: []string{"show", "describe"},
		Short:   "Show details about a plugin",
		Long: `Show details about a plugin: its canonical package name, naming tier,
registry metadata, installation status and, when loaded, the commands it
contributes.`,
		Example: strings.TrimSpace(`
mediaproc plugin info doc
mediaproc plugin info mediaproc-watermark --output json`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	enum.Var(cmd.Flags(), FlagOutput, []string{"table", "json", "yaml"}, "output format of the plugin details")
	cmd.Flags().BoolP(FlagGlobal, "g", false, "check installation in the package manager's global root")

	return cmd
}

func run(cmd *cobra.Command, name string) error {
	ctx := cmd.Context()
	mediaprocContext := mpctx.FromContext(ctx)
	manager := mediaprocContext.PluginManager()
	packageLoader := mediaprocContext.PackageLoader()
	if manager == nil || packageLoader == nil {
		return fmt.Errorf("plugin system is not available")
	}

	canonical, err := registry.Resolve(name)
	if err != nil {
		return err
	}

	global, err := cmd.Flags().GetBool(FlagGlobal)
	if err != nil {
		return err
	}

	d := details{
		Name:          name,
		CanonicalName: canonical,
		Tier:          string(registry.TierOf(canonical)),
	}
	entry, ok := registry.Lookup(name)
	if !ok {
		entry, ok = registry.LookupCanonical(canonical)
	}
	if ok {
		d.Description = entry.Description
		d.Category = entry.Category
		d.Aliases = entry.Aliases
		d.SystemRequirements = entry.SystemRequirements
		d.Keywords = entry.Keywords
	}

	status := pkgmgr.Verify(ctx, mediaprocContext.PackageManager(), packageLoader, canonical, global)
	d.InstallStatus = status.String()

	if rec, ok := manager.Get(canonical); ok {
		d.Loaded = true
		d.Version = rec.Version
		d.Description = firstNonEmpty(rec.Description, d.Description)
		d.Source = rec.Source
		for _, sub := range rec.Commands() {
			d.Commands = append(d.Commands, sub.Name())
		}
	}

	output, err := enum.Get(cmd.Flags(), FlagOutput)
	if err != nil {
		return fmt.Errorf("getting output flag failed: %w", err)
	}
	reader, err := encodeDetails(output, d)
	if err != nil {
		return err
	}
	_, err = io.Copy(cmd.OutOrStdout(), reader)
	return err
}

func encodeDetails(output string, d details) (io.Reader, error) {
	var data []byte
	var err error
	switch output {
	case "json":
		data, err = json.MarshalIndent(d, "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(d)
	case "table":
		data, err = encodeDetailsAsTable(d)
	default:
		err = fmt.Errorf("unknown output format: %q", output)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding plugin details as %q failed: %w", output, err)
	}
	return bytes.NewReader(data), nil
}

func encodeDetailsAsTable(d details) ([]byte, error) {
	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendRow(table.Row{"Plugin", d.CanonicalName})
	t.AppendRow(table.Row{"Tier", d.Tier})
	if d.Description != "" {
		t.AppendRow(table.Row{"Description", d.Description})
	}
	if d.Category != "" {
		t.AppendRow(table.Row{"Category", d.Category})
	}
	if len(d.Aliases) > 0 {
		t.AppendRow(table.Row{"Aliases", strings.Join(d.Aliases, ", ")})
	}
	if len(d.SystemRequirements) > 0 {
		t.AppendRow(table.Row{"Requires", strings.Join(d.SystemRequirements, ", ")})
	}
	t.AppendRow(table.Row{"Installed", d.InstallStatus})
	t.AppendRow(table.Row{"Loaded", fmt.Sprintf("%t", d.Loaded)})
	if d.Version != "" {
		t.AppendRow(table.Row{"Version", d.Version})
	}
	if d.Source != "" {
		t.AppendRow(table.Row{"Source", d.Source})
	}
	if len(d.Commands) > 0 {
		t.AppendRow(table.Row{"Commands", strings.Join(d.Commands, ", ")})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return buf.Bytes(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
