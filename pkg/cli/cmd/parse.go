package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devantler-tech/distreg/pkg/challenge"
	"github.com/devantler-tech/distreg/pkg/parse"
	"github.com/devantler-tech/distreg/pkg/reference"
	"github.com/devantler-tech/distreg/pkg/scope"
)

// NewParseCmd creates the parse command and its per-grammar subcommands.
func NewParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse and inspect registry strings",
		Long: "Parse and inspect the string grammars used by image registries: " +
			"image references, authorization scopes, and WWW-Authenticate challenges.",
	}

	cmd.AddCommand(newParseReferenceCmd())
	cmd.AddCommand(newParseScopeCmd())
	cmd.AddCommand(newParseChallengeCmd())

	return cmd
}

// referenceView is the JSON rendering of a parsed image reference.
type referenceView struct {
	Canonical  string   `json:"canonical"`
	Domain     string   `json:"domain,omitempty"`
	Name       string   `json:"name"`
	RemoteName string   `json:"remoteName"`
	Tag        string   `json:"tag,omitempty"`
	Digest     string   `json:"digest,omitempty"`
	Identifier bool     `json:"identifier,omitempty"`
	Path       []string `json:"path"`
}

func newParseReferenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reference INPUT",
		Short: "Parse an image reference of the form name[:tag][@digest]",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := reference.Parse(args[0])
			if err != nil {
				return syntaxError(args[0], err)
			}

			view := referenceView{
				Canonical:  ref.String(),
				Name:       ref.Name(),
				RemoteName: ref.RemoteName(),
				Tag:        ref.Tag,
				Path:       ref.Path,
			}

			if ref.Domain != nil {
				view.Domain = ref.Domain.String()
			}

			if ref.Digest != nil {
				view.Digest = ref.Digest.String()
				view.Identifier = ref.Digest.IsIdentifier()
			}

			return printJSON(cmd, view)
		},
	}
}

// resourceScopeView is the JSON rendering of one parsed resource scope.
type resourceScopeView struct {
	Type    string   `json:"type"`
	Nested  string   `json:"nested,omitempty"`
	Name    string   `json:"name"`
	Actions []string `json:"actions"`
}

func newParseScopeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scope INPUT",
		Short: "Parse an authorization scope of the form type:name:action[,action]",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := scope.Parse(args[0])
			if err != nil {
				return syntaxError(args[0], err)
			}

			views := make([]resourceScopeView, 0, len(parsed))
			for _, resourceScope := range parsed {
				views = append(views, resourceScopeView{
					Type:    resourceScope.Type.Value,
					Nested:  resourceScope.Type.Nested,
					Name:    resourceScope.Name.String(),
					Actions: resourceScope.Actions,
				})
			}

			return printJSON(cmd, views)
		},
	}
}

// challengeView is the JSON rendering of one parsed challenge.
type challengeView struct {
	Scheme string      `json:"scheme"`
	Params []paramView `json:"params,omitempty"`
}

type paramView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func newParseChallengeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "challenge INPUT",
		Short: "Parse a WWW-Authenticate challenge header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := challenge.Parse(args[0])
			if err != nil {
				return syntaxError(args[0], err)
			}

			views := make([]challengeView, 0, len(parsed))
			for _, ch := range parsed {
				view := challengeView{Scheme: ch.Scheme}
				for _, param := range ch.Params {
					view.Params = append(view.Params, paramView{Name: param.Name, Value: param.Value})
				}

				views = append(views, view)
			}

			return printJSON(cmd, views)
		},
	}
}

// printJSON writes the value as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")

	err := encoder.Encode(value)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	return nil
}

// syntaxError renders a parse failure with a caret pointing at the
// offending offset.
func syntaxError(input string, err error) error {
	var parseErr *parse.SyntaxError
	if !errors.As(err, &parseErr) {
		return err
	}

	return fmt.Errorf("%w\n%s\n%s^", err, input, strings.Repeat(" ", parseErr.Offset))
}
