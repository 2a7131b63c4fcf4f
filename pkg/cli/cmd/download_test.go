package cmd_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devantler-tech/distreg/pkg/cli/cmd"
)

// fakeImage is an in-memory image served by the test registry.
type fakeImage struct {
	manifest []byte
	blobs    map[string][]byte
}

// newFakeImage assembles an OCI manifest over the given config and
// layer contents, addressing each blob by its sha256 digest.
func newFakeImage(t *testing.T, config []byte, layers ...[]byte) fakeImage {
	t.Helper()

	blobs := make(map[string][]byte)

	descriptor := func(mediaType string, content []byte) ociv1.Descriptor {
		sum := sha256.Sum256(content)
		dgst := "sha256:" + hex.EncodeToString(sum[:])
		blobs[dgst] = content

		return ociv1.Descriptor{
			MediaType: mediaType,
			Digest:    digest.Digest(dgst),
			Size:      int64(len(content)),
		}
	}

	manifest := ociv1.Manifest{
		MediaType: ociv1.MediaTypeImageManifest,
		Config:    descriptor(ociv1.MediaTypeImageConfig, config),
	}
	manifest.SchemaVersion = 2

	for _, layer := range layers {
		manifest.Layers = append(manifest.Layers, descriptor(ociv1.MediaTypeImageLayerGzip, layer))
	}

	encoded, err := json.Marshal(manifest)
	require.NoError(t, err)

	return fakeImage{manifest: encoded, blobs: blobs}
}

// serve returns an httptest server exposing the fake image under the
// given repository.
func (img fakeImage) serve(t *testing.T, repository string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		manifestPath := "/v2/" + repository + "/manifests/"
		blobPath := "/v2/" + repository + "/blobs/"

		switch {
		case len(r.URL.Path) > len(manifestPath) && r.URL.Path[:len(manifestPath)] == manifestPath:
			w.Header().Set("Content-Type", ociv1.MediaTypeImageManifest)
			_, _ = w.Write(img.manifest)
		case len(r.URL.Path) > len(blobPath) && r.URL.Path[:len(blobPath)] == blobPath:
			content, ok := img.blobs[r.URL.Path[len(blobPath):]]
			if !ok {
				w.WriteHeader(http.StatusNotFound)

				return
			}

			_, _ = w.Write(content)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestDownload(t *testing.T) {
	t.Parallel()

	config := []byte(`{"architecture":"amd64"}`)
	layer := []byte("layer bytes")

	image := newFakeImage(t, config, layer)
	server := image.serve(t, "team/app")

	defer server.Close()

	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	output := t.TempDir()

	var out bytes.Buffer

	root := cmd.NewRootCmd("test", "test", "test")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{
		"download", "team/app:dev",
		"--transport-scheme", "http",
		"--default-registry", serverURL.Host,
		"--output", output,
	})

	require.NoError(t, root.Execute())

	manifestBytes, err := os.ReadFile(filepath.Join(output, "manifest.json"))
	require.NoError(t, err)
	assert.Equal(t, image.manifest, manifestBytes)

	configSum := sha256.Sum256(config)
	configFile := filepath.Join(output, "sha256_"+hex.EncodeToString(configSum[:]))
	configBytes, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.Equal(t, config, configBytes)

	layerSum := sha256.Sum256(layer)
	layerFile := filepath.Join(output, "sha256_"+hex.EncodeToString(layerSum[:]))
	layerBytes, err := os.ReadFile(layerFile)
	require.NoError(t, err)
	assert.Equal(t, layer, layerBytes)

	assert.Contains(t, out.String(), "downloaded")
}

func TestDownloadRejectsIndex(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", ociv1.MediaTypeImageIndex)
		_, _ = w.Write([]byte(`{"schemaVersion":2,"manifests":[]}`))
	}))
	defer server.Close()

	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	root := cmd.NewRootCmd("test", "test", "test")
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{
		"download", "team/app",
		"--transport-scheme", "http",
		"--default-registry", serverURL.Host,
		"--output", t.TempDir(),
	})

	err = root.Execute()

	require.ErrorIs(t, err, cmd.ErrIndexManifest)
}

func TestDownloadRemovesCorruptBlob(t *testing.T) {
	t.Parallel()

	config := []byte(`{"architecture":"amd64"}`)

	image := newFakeImage(t, config)

	// Corrupt the config blob after its digest went into the manifest.
	for dgst := range image.blobs {
		image.blobs[dgst] = []byte("tampered")
	}

	server := image.serve(t, "team/app")
	defer server.Close()

	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	output := t.TempDir()

	root := cmd.NewRootCmd("test", "test", "test")
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{
		"download", "team/app",
		"--transport-scheme", "http",
		"--default-registry", serverURL.Host,
		"--output", output,
	})

	err = root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match digest")

	configSum := sha256.Sum256(config)
	_, statErr := os.Stat(filepath.Join(output, "sha256_"+hex.EncodeToString(configSum[:])))
	assert.True(t, os.IsNotExist(statErr), "corrupt blob file must be removed")
}
