package blackbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func projectRootFromThisFile(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file: <root>/tests/blackbox/blackbox_test.go
	return filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
}

func buildBinary(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "trackd")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/trackd")
	cmd.Dir = projectRootFromThisFile(t)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(out))
	}
	return binPath
}

// startServer runs `trackd serve` and waits for /healthz.
func startServer(t *testing.T, bin string, profilesDir string) string {
	t.Helper()
	port := findFreePort(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	cmd := exec.Command(bin, "serve", "--addr", fmt.Sprintf("127.0.0.1:%d", port), "--profiles-dir", profilesDir, "--log-level", "warn")
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir(), "TRACKD_CONFIG=")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() { _ = cmd.Process.Kill() })
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return base
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not become healthy in time")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func do(t *testing.T, method, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func TestBlackbox_Flow(t *testing.T) {
	bin := buildBinary(t)
	profiles := t.TempDir()
	if err := os.WriteFile(filepath.Join(profiles, "long.yaml"), []byte("tracker_type: bytetrack\ntrack_buffer: 120\n"), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	base := startServer(t, bin, profiles)

	resp, body := do(t, http.MethodGet, base+"/readyz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/readyz %d %s", resp.StatusCode, string(body))
	}

	resp, body = do(t, http.MethodGet, base+"/profiles", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		t.Fatalf("/profiles %d %s", resp.StatusCode, string(body))
	}
	var profilesResp struct {
		Profiles []struct {
			Name string `json:"name"`
		} `json:"profiles"`
	}
	if err := json.Unmarshal(body, &profilesResp); err != nil {
		t.Fatalf("/profiles json: %v body=%s", err, string(body))
	}
	if len(profilesResp.Profiles) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(profilesResp.Profiles))
	}

	resp, body = do(t, http.MethodPost, base+"/runs", []byte(`{"tracker":"long","batch_size":3,"source":"images"}`))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("/runs %d %s", resp.StatusCode, string(body))
	}
	var run struct {
		ID        string `json:"id"`
		Mode      string `json:"mode"`
		Instances int    `json:"instances"`
	}
	if err := json.Unmarshal(body, &run); err != nil {
		t.Fatalf("/runs json: %v", err)
	}
	if run.Mode != "shared" || run.Instances != 1 {
		t.Fatalf("expected one shared tracker, got %+v", run)
	}

	batch := []byte(`{"frames":[{"detections":[{"box":[0,0,20,40],"score":0.9}]},{"detections":[{"box":[1,0,21,40],"score":0.9}]},{"detections":[]}]}`)
	resp, body = do(t, http.MethodPost, base+"/runs/"+run.ID+"/frames", batch)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/frames %d %s", resp.StatusCode, string(body))
	}
	var track struct {
		Results []struct {
			Detections []struct {
				TrackID int `json:"track_id"`
			} `json:"detections"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &track); err != nil {
		t.Fatalf("/frames json: %v", err)
	}
	if len(track.Results) != 3 || track.Results[0].Detections[0].TrackID != track.Results[1].Detections[0].TrackID {
		t.Fatalf("expected the shared tracker to keep one identity, got %s", string(body))
	}

	resp, body = do(t, http.MethodGet, base+"/status", nil)
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte(run.ID)) {
		t.Fatalf("/status %d %s", resp.StatusCode, string(body))
	}

	resp, _ = do(t, http.MethodDelete, base+"/runs/"+run.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, base+"/runs/"+run.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestBlackbox_UnsupportedTrackerKind_400(t *testing.T) {
	bin := buildBinary(t)
	profiles := t.TempDir()
	if err := os.WriteFile(filepath.Join(profiles, "deep.yaml"), []byte("tracker_type: deepsort\n"), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	base := startServer(t, bin, profiles)
	resp, body := do(t, http.MethodPost, base+"/runs", []byte(`{"tracker":"deep","batch_size":1}`))
	if resp.StatusCode != http.StatusBadRequest || !bytes.Contains(body, []byte("deepsort")) {
		t.Fatalf("expected 400 naming the kind, got %d, body=%s", resp.StatusCode, string(body))
	}
}
