package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/chirp/internal/config"
)

// configView is the effective configuration after defaults, the file, the
// environment and flags are merged.
type configView struct {
	File        string        `json:"file" yaml:"file"`
	Server      string        `json:"server" yaml:"server"`
	SessionFile string        `json:"session_file" yaml:"session_file"`
	KeyFile     string        `json:"key_file" yaml:"key_file"`
	LogLevel    string        `json:"log_level" yaml:"log_level"`
	LogFile     string        `json:"log_file" yaml:"log_file"`
	Format      string        `json:"format" yaml:"format"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
	CADir       string        `json:"ca_dir" yaml:"ca_dir"`
	PageSize    int           `json:"page_size" yaml:"page_size"`
}

func newConfigView(c *config.Config) configView {
	return configView{
		File:        c.File(),
		Server:      c.Server,
		SessionFile: c.SessionFile,
		KeyFile:     c.KeyFile,
		LogLevel:    c.LogLevel,
		LogFile:     c.LogFile,
		Format:      c.Format,
		Timeout:     c.Timeout,
		CADir:       c.CADir,
		PageSize:    c.PageSize,
	}
}

func (v configView) Text(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	file := v.File
	if file == "" {
		file = "(none)"
	}
	rows := [][2]string{
		{"file", file},
		{config.KeyServer, v.Server},
		{config.KeySessionFile, v.SessionFile},
		{config.KeyKeyFile, v.KeyFile},
		{config.KeyLogLevel, v.LogLevel},
		{config.KeyLogFile, v.LogFile},
		{config.KeyFormat, v.Format},
		{config.KeyTimeout, v.Timeout.String()},
		{config.KeyCADir, v.CADir},
		{config.KeyPageSize, fmt.Sprint(v.PageSize)},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func newConfigCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the chirp configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.env.Out.Render(newConfigView(opts.env.Config))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting in config.yaml",
		Long: fmt.Sprintf(`Store a setting in config.yaml under the chirp home directory.

Keys: %s`, strings.Join(config.Keys, ", ")),
		Example: "  chirp config set server https://chirp.example.com\n  chirp config set page_size 50",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.env.Config
			if err := cfg.Set(args[0], args[1]); err != nil {
				return WrapExitError(ExitCommandError, "config set", err)
			}
			return opts.env.Out.Render(done{Result: true, Message: fmt.Sprintf("%s saved to %s", args[0], cfg.Path())})
		},
	})

	return cmd
}
