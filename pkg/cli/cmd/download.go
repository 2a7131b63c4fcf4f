package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/spf13/cobra"

	"github.com/devantler-tech/distreg/pkg/client/registry"
	"github.com/devantler-tech/distreg/pkg/reference"
	"github.com/devantler-tech/distreg/pkg/ui/notify"
)

// dockerManifestListMediaType is the Docker schema 2 manifest list type.
const dockerManifestListMediaType = "application/vnd.docker.distribution.manifest.list.v2+json"

// shortDigestLength is how many hex characters identify a blob in
// progress output.
const shortDigestLength = 12

// ErrIndexManifest indicates a reference resolving to a multi-platform
// index rather than a single image manifest.
var ErrIndexManifest = errors.New("reference resolves to a multi-platform index, pin a platform manifest by digest")

// NewDownloadCmd creates the download command.
func NewDownloadCmd(opts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download REFERENCE",
		Short: "Download an image manifest and its blobs to a directory",
		Long: "Download an image manifest and its blobs to a directory. " +
			"Blobs are fetched in parallel and verified against their digests; " +
			"the manifest is written as manifest.json and each blob as algorithm_hex.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cmd.Flags().GetString("output")
			if err != nil {
				return fmt.Errorf("read output flag: %w", err)
			}

			ref, err := opts.Resolve(args[0])
			if err != nil {
				return err
			}

			skipVerify, err := cmd.Flags().GetBool("skip-verify")
			if err != nil {
				return fmt.Errorf("read skip-verify flag: %w", err)
			}

			client, err := opts.Client(cmd, ref.Domain.String())
			if err != nil {
				return err
			}

			return download(cmd, client, ref, output, skipVerify)
		},
	}

	cmd.Flags().StringP("output", "o", ".", "Directory to download into")
	cmd.Flags().Bool("skip-verify", false, "Skip digest verification of downloaded blobs")

	return cmd
}

// download fetches the manifest, then its config and layer blobs in
// parallel.
func download(
	cmd *cobra.Command,
	client *registry.Client,
	ref reference.Reference,
	output string,
	skipVerify bool,
) error {
	manifest, err := client.Manifest(cmd.Context(), ref)
	if err != nil {
		return err
	}

	if manifest.MediaType == ociv1.MediaTypeImageIndex || manifest.MediaType == dockerManifestListMediaType {
		return fmt.Errorf("%w: %s", ErrIndexManifest, ref.String())
	}

	var image ociv1.Manifest

	err = json.Unmarshal(manifest.Body, &image)
	if err != nil {
		return fmt.Errorf("decode manifest of %q: %w", ref.String(), err)
	}

	err = os.MkdirAll(output, 0o755)
	if err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	err = os.WriteFile(filepath.Join(output, "manifest.json"), manifest.Body, 0o644)
	if err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	notify.Activityf(cmd.OutOrStdout(), "downloading %s", ref.String())

	descriptors := append([]ociv1.Descriptor{image.Config}, image.Layers...)
	tasks := make([]notify.ProgressTask, 0, len(descriptors))

	for _, descriptor := range descriptors {
		tasks = append(tasks, notify.ProgressTask{
			Name: shortDigest(descriptor),
			Fn: func(ctx context.Context) error {
				return downloadBlob(ctx, client, ref.RemoteName(), descriptor, output, skipVerify)
			},
		})
	}

	group := notify.NewProgressGroup("Downloading blobs", "", "downloaded", cmd.OutOrStdout())

	err = group.Run(cmd.Context(), tasks...)
	if err != nil {
		return fmt.Errorf("download blobs of %q: %w", ref.String(), err)
	}

	return nil
}

// downloadBlob streams one blob to disk and verifies it against its
// digest. Files failing verification are removed.
func downloadBlob(
	ctx context.Context,
	client *registry.Client,
	repository string,
	descriptor ociv1.Descriptor,
	output string,
	skipVerify bool,
) error {
	dgst := reference.Digest{
		Algorithm: descriptor.Digest.Algorithm().String(),
		Hex:       descriptor.Digest.Encoded(),
	}

	body, _, err := client.Blob(ctx, repository, dgst)
	if err != nil {
		return err
	}

	defer func() { _ = body.Close() }()

	path := filepath.Join(output, dgst.Algorithm+"_"+dgst.Hex)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create blob file: %w", err)
	}

	if skipVerify {
		_, err = io.Copy(file, body)
	} else {
		err = registry.VerifyBlob(dgst, io.TeeReader(body, file))
	}

	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(path)

		return fmt.Errorf("download blob %q: %w", dgst.String(), err)
	}

	return nil
}

// shortDigest abbreviates a descriptor digest for progress display.
func shortDigest(descriptor ociv1.Descriptor) string {
	encoded := descriptor.Digest.Encoded()
	if len(encoded) > shortDigestLength {
		encoded = encoded[:shortDigestLength]
	}

	return encoded
}
