package http_request

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/specialistvlad/nodegraph/internal/registry"
	"github.com/specialistvlad/nodegraph/internal/types"
)

type uploader struct {
	client *http.Client
}

// Compute PUTs the file at "path" to "url", typically a pre-signed object
// storage URL. Anything but 200 OK fails the node.
func (u uploader) Compute(ctx context.Context, in node.Inputs) (node.Outputs, error) {
	var path, url string
	if err := in.Decode("path", &path); err != nil {
		return nil, err
	}
	if err := in.Decode("url", &url); err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx).With("action", "upload")

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file '%s': %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file stats for '%s': %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, file)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	logger.Info("Uploading file", "source", path, "size", stat.Size(), "contentType", contentType)
	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upload failed with status: %s", resp.Status)
	}
	logger.Info("Successfully uploaded file", "status", resp.Status)

	return node.Outputs{"status": resp.Status, "then": true}, nil
}

func uploadFile(client *http.Client) registry.NodeType {
	return registry.NodeType{
		Name: "UploadFile",
		Kind: node.Callable,
		Meta: node.Meta{Category: "Network", Description: "Uploads a local file with an HTTP PUT.", Keywords: []string{"s3", "upload", "put"}},
		Pins: []pin.Spec{
			{Name: "exec", Type: types.Exec, Structure: pin.Multi},
			{Name: "path", Type: types.String},
			{Name: "url", Type: types.String},
			{Name: "status", Type: types.String, Direction: pin.Output, Transient: true},
			{Name: "then", Type: types.Exec, Direction: pin.Output},
		},
		New: func() node.Behavior { return uploader{client: client} },
	}
}
