package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/devantler-tech/distreg/pkg/client/registry"
	"github.com/devantler-tech/distreg/pkg/ui/notify"
)

// ErrDigestRequired indicates a blob operation on a reference without a
// digest.
var ErrDigestRequired = errors.New("reference must carry a digest, e.g. name@sha256:...")

// NewRawCmd creates the raw command and its distribution API subcommands.
func NewRawCmd(opts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "raw",
		Short: "Raw access to the distribution HTTP API",
		Long: "Raw access to the distribution HTTP API. " +
			"Responses are printed verbatim, so output composes with tools like jq.",
	}

	cmd.AddCommand(newRawCatalogCmd(opts))
	cmd.AddCommand(newRawTagsCmd(opts))
	cmd.AddCommand(newRawManifestCmd(opts))
	cmd.AddCommand(newRawBlobCmd(opts))

	return cmd
}

// pageFlags registers the pagination flags shared by the list
// subcommands.
func pageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("limit", 0, "Maximum number of results per page (0 for the registry default)")
	cmd.Flags().String("last", "", "Last result of the previous page, for resuming a listing")
	cmd.Flags().Bool("all", false, "Follow pagination links until the listing is complete")
}

// readPageFlags resolves the pagination flags into a cursor.
func readPageFlags(cmd *cobra.Command) (*registry.Paginate, bool, error) {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return nil, false, fmt.Errorf("read limit flag: %w", err)
	}

	last, err := cmd.Flags().GetString("last")
	if err != nil {
		return nil, false, fmt.Errorf("read last flag: %w", err)
	}

	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return nil, false, fmt.Errorf("read all flag: %w", err)
	}

	if limit == 0 && last == "" {
		return nil, all, nil
	}

	return &registry.Paginate{N: limit, Last: last}, all, nil
}

// listPages drives a paginated list endpoint, printing each page's raw
// body and following links when requested.
func listPages(
	cmd *cobra.Command,
	page *registry.Paginate,
	all bool,
	fetch func(*registry.Paginate) ([]byte, *registry.Paginate, error),
) error {
	for {
		body, next, err := fetch(page)
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(append(body, '\n'))
		if err != nil {
			return fmt.Errorf("write response body: %w", err)
		}

		if next == nil {
			return nil
		}

		if !all {
			notify.Infof(cmd.ErrOrStderr(), "more results available, continue with --last %s", next.Last)

			return nil
		}

		page = next
	}
}

func newRawCatalogCmd(opts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog [REGISTRY]",
		Short: "List repositories on a registry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := opts.DefaultRegistry()
			if len(args) == 1 {
				host = args[0]
			}

			client, err := opts.Client(cmd, host)
			if err != nil {
				return err
			}

			page, all, err := readPageFlags(cmd)
			if err != nil {
				return err
			}

			return listPages(cmd, page, all, func(page *registry.Paginate) ([]byte, *registry.Paginate, error) {
				return client.RawCatalog(cmd.Context(), page)
			})
		},
	}

	pageFlags(cmd)

	return cmd
}

func newRawTagsCmd(opts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags NAME",
		Short: "List tags of a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := opts.Resolve(args[0])
			if err != nil {
				return err
			}

			client, err := opts.Client(cmd, ref.Domain.String())
			if err != nil {
				return err
			}

			page, all, err := readPageFlags(cmd)
			if err != nil {
				return err
			}

			return listPages(cmd, page, all, func(page *registry.Paginate) ([]byte, *registry.Paginate, error) {
				return client.RawTags(cmd.Context(), ref.RemoteName(), page)
			})
		},
	}

	pageFlags(cmd)

	return cmd
}

func newRawManifestCmd(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "manifest REFERENCE",
		Short: "Fetch an image manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := opts.Resolve(args[0])
			if err != nil {
				return err
			}

			client, err := opts.Client(cmd, ref.Domain.String())
			if err != nil {
				return err
			}

			manifest, err := client.Manifest(cmd.Context(), ref)
			if err != nil {
				return err
			}

			notify.Infof(cmd.ErrOrStderr(), "media type: %s", manifest.MediaType)

			if manifest.Digest != "" {
				notify.Infof(cmd.ErrOrStderr(), "digest: %s", manifest.Digest)
			}

			_, err = cmd.OutOrStdout().Write(append(manifest.Body, '\n'))
			if err != nil {
				return fmt.Errorf("write manifest body: %w", err)
			}

			return nil
		},
	}
}

func newRawBlobCmd(opts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blob REFERENCE",
		Short: "Fetch a blob addressed by the reference's digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := opts.Resolve(args[0])
			if err != nil {
				return err
			}

			if ref.Digest == nil {
				return ErrDigestRequired
			}

			client, err := opts.Client(cmd, ref.Domain.String())
			if err != nil {
				return err
			}

			start, err := cmd.Flags().GetInt64("start")
			if err != nil {
				return fmt.Errorf("read start flag: %w", err)
			}

			end, err := cmd.Flags().GetInt64("end")
			if err != nil {
				return fmt.Errorf("read end flag: %w", err)
			}

			if start > 0 || end >= 0 {
				body, _, err := client.BlobRange(cmd.Context(), ref.RemoteName(), *ref.Digest, start, end)
				if err != nil {
					return err
				}

				defer func() { _ = body.Close() }()

				_, err = io.Copy(cmd.OutOrStdout(), body)
				if err != nil {
					return fmt.Errorf("write blob content: %w", err)
				}

				return nil
			}

			body, _, err := client.Blob(cmd.Context(), ref.RemoteName(), *ref.Digest)
			if err != nil {
				return err
			}

			defer func() { _ = body.Close() }()

			// Verify while streaming so corrupt content is reported even
			// though it has already been written.
			err = registry.VerifyBlob(*ref.Digest, io.TeeReader(body, cmd.OutOrStdout()))
			if err != nil {
				return err
			}

			return nil
		},
	}

	cmd.Flags().Int64("start", 0, "First byte of a range request")
	cmd.Flags().Int64("end", -1, "Last byte of a range request (-1 for the rest of the blob)")

	return cmd
}
