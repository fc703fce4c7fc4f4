package topology

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Kind string

const (
	KindDeadLetterQueue Kind = "queue-dlq"
	KindQueue           Kind = "queue"
	KindExchange        Kind = "exchange"
	KindBindings        Kind = "bindings"
)

const fileExtension = ".json"

// Longest prefix first, "queue-dlq_" and "queue_" must not shadow each other.
var kinds = []Kind{KindDeadLetterQueue, KindQueue, KindExchange, KindBindings}

const exportDirLayout = "2006-01-02_150405"

func DefaultExportPath(now time.Time) string {
	return now.Format(exportDirLayout)
}

func FileName(kind Kind, id string) string {
	return string(kind) + "_" + id + fileExtension
}

// ParseFileName splits an export file name into kind and id.
func ParseFileName(name string) (Kind, string, bool) {
	if filepath.Ext(name) != fileExtension {
		return "", "", false
	}
	base := strings.TrimSuffix(name, fileExtension)

	for _, kind := range kinds {
		prefix := string(kind) + "_"
		if strings.HasPrefix(base, prefix) && len(base) > len(prefix) {
			return kind, strings.TrimPrefix(base, prefix), true
		}
	}
	return "", "", false
}

// FilesystemError is an I/O failure on the export directory.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("Could not %s [%s]: %s", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Cause() error {
	return e.Err
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

func createDir(path string) error {
	err := os.MkdirAll(path, 0755)
	if err != nil {
		return &FilesystemError{Op: "create directory", Path: path, Err: err}
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &FilesystemError{Op: "encode", Path: path, Err: err}
	}

	err = ioutil.WriteFile(path, append(content, '\n'), 0644)
	if err != nil {
		return &FilesystemError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return &FilesystemError{Op: "read", Path: path, Err: err}
	}

	err = json.Unmarshal(content, v)
	if err != nil {
		return &FilesystemError{Op: "decode", Path: path, Err: err}
	}
	return nil
}
