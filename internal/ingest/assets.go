package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hyan/noteflow/internal/model"
	"github.com/hyan/noteflow/internal/vault"
)

// AssetStore downloads remote resources and persists them as binary
// objects in the vault under deterministic, collision-avoided paths.
// Assets are resolved independently per message; there is no cache.
type AssetStore struct {
	store      vault.DocumentStore
	policy     vault.AttachmentPathPolicy
	saveFolder string
	httpClient *http.Client

	// now is stubbed in tests to make generated names predictable.
	now func() time.Time
}

// NewAssetStore creates an asset store placing files per the given
// attachment path policy relative to saveFolder.
func NewAssetStore(store vault.DocumentStore, policy vault.AttachmentPathPolicy, saveFolder string) *AssetStore {
	return &AssetStore{
		store:      store,
		policy:     policy,
		saveFolder: saveFolder,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// SaveURL downloads rawURL and persists the body, returning the
// vault-relative path of the stored asset.
func (s *AssetStore) SaveURL(ctx context.Context, rawURL string) (model.AssetReference, error) {
	var ref model.AssetReference

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return ref, &FetchError{URL: rawURL, Err: err}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return ref, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ref, &FetchError{URL: rawURL, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ref, &FetchError{URL: rawURL, Err: err}
	}
	if len(data) == 0 {
		return ref, &FetchError{URL: rawURL, Err: fmt.Errorf("empty response body")}
	}

	fileName := s.fileNameFromURL(rawURL)
	path, fileName, err := s.place(ctx, fileName)
	if err != nil {
		return ref, err
	}

	if err := s.store.CreateBinary(ctx, path, data); err != nil {
		return ref, &StorageError{Path: path, Err: err}
	}

	return model.AssetReference{RemoteURL: rawURL, LocalPath: path, FileName: fileName}, nil
}

// SaveBytes persists a source-carried binary part (e.g. an inline mail
// image) under the same placement and collision rules as downloads.
func (s *AssetStore) SaveBytes(ctx context.Context, name string, data []byte) (model.AssetReference, error) {
	var ref model.AssetReference
	if len(data) == 0 {
		return ref, fmt.Errorf("attachment %s: empty data", name)
	}

	fileName := strconv.FormatInt(s.now().Unix(), 10) + name
	if !strings.Contains(fileName, ".") {
		fileName += ".jpg"
	}

	path, fileName, err := s.place(ctx, fileName)
	if err != nil {
		return ref, err
	}
	if err := s.store.CreateBinary(ctx, path, data); err != nil {
		return ref, &StorageError{Path: path, Err: err}
	}

	return model.AssetReference{LocalPath: path, FileName: fileName}, nil
}

// fileNameFromURL derives a local filename: a timestamp prefix plus
// the last URL path segment, with .jpg appended when the segment
// carries no extension.
func (s *AssetStore) fileNameFromURL(rawURL string) string {
	stamp := strconv.FormatInt(s.now().Unix(), 10)

	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return stamp + ".jpg"
	}

	segment := u.Path[strings.LastIndex(u.Path, "/")+1:]
	fileName := stamp + segment
	if !strings.Contains(fileName, ".") {
		fileName += ".jpg"
	}
	return fileName
}

// place resolves fileName against the attachment path policy and, if
// the resulting path already exists, renames with a fresh timestamp
// prefix.
func (s *AssetStore) place(ctx context.Context, fileName string) (string, string, error) {
	path, err := s.policy.Resolve(ctx, s.store, s.saveFolder, fileName)
	if err != nil {
		return "", "", err
	}
	if !s.store.Exists(path) {
		return path, fileName, nil
	}

	renamed := strconv.FormatInt(s.now().Unix(), 10) + fileName
	path = strings.Replace(path, fileName, renamed, 1)
	return path, renamed, nil
}
