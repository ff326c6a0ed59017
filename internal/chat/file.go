package chat

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/fastyr/fastyr/internal/api"
)

// OpenFile reads the file at path for upload. The type comes from the
// extension, falling back to content sniffing.
func OpenFile(path string) (api.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return api.File{}, fmt.Errorf("read %s: %w", path, err)
	}
	return api.File{
		Name: filepath.Base(path),
		Type: detectType(path, data),
		Data: data,
	}, nil
}

func detectType(path string, data []byte) string {
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return ct
}

// Meta returns the attachment descriptors kept in state for files.
func Meta(files []api.File) []FileMeta {
	if len(files) == 0 {
		return nil
	}
	out := make([]FileMeta, len(files))
	for i, f := range files {
		out[i] = FileMeta{Name: f.Name, Type: f.Type}
	}
	return out
}
