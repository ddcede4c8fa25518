package etf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// TestObject is the data source a test run executes against: an uploaded
// data archive, a remote service endpoint, or a downloadable dataset.
// Exactly one form is set.
type TestObject struct {
	archivePath string
	serviceURL  string
	datasetURL  string
}

// TestObjectFromArchive creates a test object from a local data archive
// that will be uploaded on submission.
func TestObjectFromArchive(path string) TestObject {
	return TestObject{archivePath: path}
}

// TestObjectFromService creates a test object referencing a remote
// service endpoint.
func TestObjectFromService(serviceURL string) TestObject {
	return TestObject{serviceURL: serviceURL}
}

// TestObjectFromDataSetURL creates a test object referencing a
// downloadable dataset.
func TestObjectFromDataSetURL(datasetURL string) TestObject {
	return TestObject{datasetURL: datasetURL}
}

// resolve turns the test object into the reference submitted with a run,
// uploading the data archive first when one is set.
func (o TestObject) resolve(ctx context.Context, c *Client) (map[string]string, error) {
	switch {
	case o.archivePath != "":
		id, err := c.uploadArchive(ctx, o.archivePath)
		if err != nil {
			return nil, err
		}
		return map[string]string{"id": id}, nil
	case o.serviceURL != "":
		return map[string]string{"serviceEndpoint": o.serviceURL}, nil
	case o.datasetURL != "":
		return map[string]string{"dataSetUrl": o.datasetURL}, nil
	default:
		return nil, fmt.Errorf("test object has no data source")
	}
}

// uploadArchive uploads a data archive and returns the created temporary
// test object id.
func (c *Client) uploadArchive(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening data archive: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("preparing upload: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("preparing upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("preparing upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "v2/TestObjects", &buf)
	if err != nil {
		return "", err
	}
	q := req.URL.Query()
	q.Set("action", "upload")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.logger.Info().Str("archive", path).Msg("uploading test data archive")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: uploading %s: %v", ErrRemoteInvocation, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: uploading %s: unexpected status %d", ErrRemoteInvocation, path, resp.StatusCode)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("%w: uploading %s: decoding response: %v", ErrRemoteInvocation, path, err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: uploading %s: service returned no test object id", ErrRemoteInvocation, path)
	}
	return created.ID, nil
}
