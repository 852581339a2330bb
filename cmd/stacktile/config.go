package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/stacktile/internal/config"
)

func loadConfigArg(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func newConfigCmd() *cobra.Command {
	var path string
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the stacktile configuration",
	}
	configCmd.PersistentFlags().StringVar(&path, "path", "", "Config file path (default: ~/.config/stacktile/config.yaml)")

	validateCmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Check the configuration for errors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := path
			if len(args) == 1 {
				target = args[0]
			}
			if _, err := loadConfigArg(target); err != nil {
				return err
			}
			fmt.Println("config: ok")
			return nil
		},
	}

	printCmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadConfigArg(path)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(res.Config)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}

	explainCmd := &cobra.Command{
		Use:   "explain <yaml.path>",
		Short: "Show a setting's value and the file that set it",
		Example: `  stacktile config explain keyhints
  stacktile config explain vdesks.0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadConfigArg(path)
			if err != nil {
				return err
			}
			value, src, err := config.Explain(res, args[0])
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(value)
			if err != nil {
				return err
			}
			fmt.Printf("path: %s\n", args[0])
			fmt.Printf("source: %s\n", formatSource(src))
			fmt.Printf("value:\n%s", string(out))
			return nil
		},
	}

	configCmd.AddCommand(validateCmd, printCmd, explainCmd)
	return configCmd
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
