// Package selfupdate checks GitHub releases and swaps in a newer synex
// binary.
package selfupdate

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	maxDownloadSize = 100 << 20 // 100 MB
	maxBinarySize   = 200 << 20 // 200 MB
)

// ErrPermission is returned when the installed binary cannot be replaced.
var ErrPermission = errors.New("permission denied replacing binary")

// Release is the subset of a GitHub release the updater reads.
type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// Asset is a downloadable release file.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Version returns the tag without its leading "v".
func (r Release) Version() string {
	return strings.TrimPrefix(r.TagName, "v")
}

// AssetURL returns the download URL for name, or "".
func (r Release) AssetURL(name string) string {
	for _, a := range r.Assets {
		if a.Name == name {
			return a.BrowserDownloadURL
		}
	}
	return ""
}

// Updater fetches releases of Binary from a GitHub Repo ("owner/name").
type Updater struct {
	Repo   string
	Binary string
	HTTP   *http.Client
	// APIBase defaults to https://api.github.com.
	APIBase string
}

// New returns an Updater with a 15s HTTP timeout.
func New(repo, binary string) *Updater {
	return &Updater{
		Repo:    repo,
		Binary:  binary,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		APIBase: "https://api.github.com",
	}
}

// TarballName is the release asset for the running platform.
func (u *Updater) TarballName() string {
	return fmt.Sprintf("%s_%s_%s.tar.gz", u.Binary, runtime.GOOS, runtime.GOARCH)
}

// Latest fetches the latest published release.
func (u *Updater) Latest(ctx context.Context) (Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.APIBase+"/repos/"+u.Repo+"/releases/latest", nil)
	if err != nil {
		return Release{}, fmt.Errorf("selfupdate.Latest: %w", err)
	}
	resp, err := u.HTTP.Do(req)
	if err != nil {
		return Release{}, fmt.Errorf("selfupdate.Latest: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return Release{}, fmt.Errorf("selfupdate.Latest: GitHub API returned %s", resp.Status)
	}
	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return Release{}, fmt.Errorf("selfupdate.Latest: parse release: %w", err)
	}
	return rel, nil
}

// Check returns the latest version if it is newer than current. Dev builds
// never report an update.
func (u *Updater) Check(ctx context.Context, current string) (string, bool, error) {
	if current == "" || current == "dev" {
		return "", false, nil
	}
	rel, err := u.Latest(ctx)
	if err != nil {
		return "", false, err
	}
	if !IsNewerVersion(rel.Version(), current) {
		return "", false, nil
	}
	return "v" + rel.Version(), true, nil
}

// Install downloads rel's tarball for this platform, verifies it against
// the release checksums and atomically replaces execPath.
func (u *Updater) Install(ctx context.Context, rel Release, execPath string) error {
	tarballName := u.TarballName()
	tarballURL := rel.AssetURL(tarballName)
	if tarballURL == "" {
		return fmt.Errorf("selfupdate.Install: no asset %s in release %s", tarballName, rel.TagName)
	}
	checksumsURL := rel.AssetURL("checksums.txt")
	if checksumsURL == "" {
		return fmt.Errorf("selfupdate.Install: release %s missing checksums.txt", rel.TagName)
	}

	tmpDir, err := os.MkdirTemp("", u.Binary+"-update-*")
	if err != nil {
		return fmt.Errorf("selfupdate.Install: create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir) //nolint:errcheck

	tarballPath := filepath.Join(tmpDir, tarballName)
	if err := u.download(ctx, tarballURL, tarballPath); err != nil {
		return fmt.Errorf("selfupdate.Install: download tarball: %w", err)
	}
	checksumsPath := filepath.Join(tmpDir, "checksums.txt")
	if err := u.download(ctx, checksumsURL, checksumsPath); err != nil {
		return fmt.Errorf("selfupdate.Install: download checksums: %w", err)
	}
	if err := VerifyChecksum(tarballPath, checksumsPath, tarballName); err != nil {
		return fmt.Errorf("selfupdate.Install: %w", err)
	}

	newBinary := filepath.Join(tmpDir, u.Binary)
	if err := ExtractBinary(tarballPath, newBinary, u.Binary); err != nil {
		return fmt.Errorf("selfupdate.Install: extract: %w", err)
	}
	return replace(newBinary, execPath)
}

func (u *Updater) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := u.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %s from %s", resp.Status, url)
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck
	_, err = io.Copy(f, io.LimitReader(resp.Body, maxDownloadSize))
	return err
}

// replace writes src next to dst and renames it over dst.
func replace(src, dst string) error {
	stage := dst + ".new"
	defer os.Remove(stage) //nolint:errcheck

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open extracted binary: %w", err)
	}
	defer in.Close() //nolint:errcheck

	out, err := os.OpenFile(stage, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("%w: %s", ErrPermission, filepath.Dir(dst))
		}
		return fmt.Errorf("create staged binary: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close() //nolint:errcheck
		return fmt.Errorf("write staged binary: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close staged binary: %w", err)
	}
	if err := os.Rename(stage, dst); err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("%w: %s", ErrPermission, dst)
		}
		return fmt.Errorf("replace binary: %w", err)
	}
	return nil
}

// IsNewerVersion returns true if latest is a newer semver than current.
// Missing or non-numeric parts count as zero.
func IsNewerVersion(latest, current string) bool {
	l := parseVersion(latest)
	c := parseVersion(current)
	for i := range l {
		if l[i] != c[i] {
			return l[i] > c[i]
		}
	}
	return false
}

func parseVersion(v string) [3]int {
	var out [3]int
	parts := strings.SplitN(strings.TrimPrefix(v, "v"), ".", 3)
	for i, p := range parts {
		n, _ := strconv.Atoi(p) //nolint:errcheck // zero-value on parse failure is desired
		out[i] = n
	}
	return out
}

// VerifyChecksum checks filePath against the sha256 listed for fileName in
// a checksums.txt file.
func VerifyChecksum(filePath, checksumsPath, fileName string) error {
	data, err := os.ReadFile(checksumsPath)
	if err != nil {
		return fmt.Errorf("read checksums: %w", err)
	}
	var expected string
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == fileName {
			expected = fields[0]
			break
		}
	}
	if expected == "" {
		return fmt.Errorf("no checksum found for %s", fileName)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close() //nolint:errcheck

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash file: %w", err)
	}
	if actual := hex.EncodeToString(h.Sum(nil)); actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}

// ExtractBinary copies the regular file named binary (at any depth) out of
// a .tar.gz to dest.
func ExtractBinary(tarballPath, dest, binary string) error {
	f, err := os.Open(tarballPath)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("gzip reader: %w", err)
	}
	defer gz.Close() //nolint:errcheck

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("tar read: %w", err)
		}
		if filepath.Base(hdr.Name) != binary || hdr.Typeflag != tar.TypeReg {
			continue
		}
		out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, io.LimitReader(tr, maxBinarySize)); err != nil {
			out.Close() //nolint:errcheck
			return err
		}
		return out.Close()
	}
	return fmt.Errorf("%s binary not found in tarball", binary)
}
