package googledrive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

var parentQueryRe = regexp.MustCompile(`'([^']+)' in parents`)

type createdFolder struct {
	Name   string
	Parent string
}

// fakeDrive is an httptest-backed stand-in for the Drive files API.
type fakeDrive struct {
	mu sync.Mutex

	// children maps a folder id to its listed child folders.
	children map[string][]*drive.File

	// failCreate maps folder names to the HTTP status their creation fails with.
	failCreate map[string]int

	// omitWebViewLink drops webViewLink from create responses.
	omitWebViewLink bool

	created []createdFolder
	nextID  int
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		children:   make(map[string][]*drive.File),
		failCreate: make(map[string]int),
	}
}

func (f *fakeDrive) createdNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.created))
	for i, c := range f.created {
		names[i] = c.Name
	}
	return names
}

func (f *fakeDrive) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/files":
			f.handleCreate(t, w, r)
		case r.Method == http.MethodGet && r.URL.Path == "/files":
			f.handleList(t, w, r)
		default:
			t.Errorf("unexpected drive request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (f *fakeDrive) handleCreate(t *testing.T, w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string   `json:"name"`
		MimeType string   `json:"mimeType"`
		Parents  []string `json:"parents"`
	}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	require.Equal(t, FolderMimeType, body.MimeType)
	require.Len(t, body.Parents, 1)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.created = append(f.created, createdFolder{Name: body.Name, Parent: body.Parents[0]})

	if status, ok := f.failCreate[body.Name]; ok {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"error": {"code": %d, "message": "create %s rejected"}}`, status, body.Name)
		return
	}

	f.nextID++
	id := fmt.Sprintf("folder-%d", f.nextID)

	resp := map[string]string{"id": id, "name": body.Name}
	if !f.omitWebViewLink {
		resp["webViewLink"] = "https://drive.google.com/drive/folders/" + id + "?usp=drivesdk"
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (f *fakeDrive) handleList(t *testing.T, w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	m := parentQueryRe.FindStringSubmatch(q)
	require.NotNil(t, m, "list query missing parent clause: %s", q)

	f.mu.Lock()
	files := f.children[m[1]]
	f.mu.Unlock()

	if files == nil {
		files = []*drive.File{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"files": files})
}

func newTestDriveService(t *testing.T, fake *fakeDrive) *drive.Service {
	t.Helper()

	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	svc, err := drive.NewService(context.Background(),
		option.WithEndpoint(server.URL),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return svc
}
