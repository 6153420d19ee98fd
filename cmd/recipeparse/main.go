package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pantry-chef/internal/core/recipe"
	"pantry-chef/internal/pkg/common"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd 解析模型輸出的食譜文字並以 JSON 印出
func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var delimiter string

	cmd := &cobra.Command{
		Use:   "recipeparse [file]",
		Short: "Parse a raw recipe completion into structured JSON",
		Long: `recipeparse reads the raw text returned by the language model, from a file
or from stdin, splits it on the delimiter and prints the parsed recipes as JSON.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := in
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open input: %w", err)
				}
				defer f.Close()
				src = f
			}

			raw, err := io.ReadAll(src)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			recipes, err := recipe.Parse(string(raw), delimiter)
			if err != nil {
				return err
			}
			return common.WriteJSONIndent(out, recipes)
		},
	}

	cmd.Flags().StringVarP(&delimiter, "delimiter", "d", recipe.DefaultDelimiter, "recipe block delimiter")
	return cmd
}
