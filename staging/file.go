package staging

import (
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Status string

const (
	Ready     Status = "ready"
	Uploading Status = "uploading"
	Completed Status = "completed"
	Failed    Status = "error"
)

var (
	ErrNotZip       = errors.New("not a ZIP file")
	ErrFileNotFound = errors.New("file not found")
	ErrNoContent    = errors.New("file has no content")
)

var zipTypes = []string{"application/zip", "application/x-zip-compressed"}

// UploadedFile is a staged file and its upload state.
type UploadedFile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	Type         string    `json:"type"`
	LastModified time.Time `json:"last_modified"`
	Status       Status    `json:"status"`
	Progress     int       `json:"progress"`

	open func() (io.ReadCloser, error)
}

// Open returns the content of the staged file.
func (f UploadedFile) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, ErrNoContent
	}

	return f.open()
}

// Input describes a file offered to the queue.
type Input struct {
	Name         string
	Size         int64
	Type         string
	LastModified time.Time
	Open         func() (io.ReadCloser, error)
}

// FromPath builds an Input backed by a file on the local filesystem.
func FromPath(path string) (Input, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Input{}, err
	}
	if fi.IsDir() {
		return Input{}, fmt.Errorf("%s is a directory", path)
	}

	return Input{
		Name:         filepath.Base(path),
		Size:         fi.Size(),
		Type:         mime.TypeByExtension(filepath.Ext(path)),
		LastModified: fi.ModTime(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// Validator rejects inputs that must not be staged.
type Validator func(Input) error

// ZipOnly accepts a file whose name ends in .zip or whose MIME type is a ZIP type.
func ZipOnly(in Input) error {
	if strings.HasSuffix(strings.ToLower(in.Name), ".zip") {
		return nil
	}
	for _, t := range zipTypes {
		if in.Type == t {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrNotZip, in.Name)
}

// RejectionMessage is the alert shown for a file refused by ZipOnly.
func RejectionMessage(name string) string {
	return fmt.Sprintf(`File "%s" is not a ZIP file. Please upload ZIP files only.`, name)
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders a byte count the way the upload list shows it, e.g. "1.5 KB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	i, div := 0, int64(1)
	for i < len(sizeUnits)-1 && bytes >= div*1024 {
		div *= 1024
		i++
	}
	v := math.Round(float64(bytes)/float64(div)*100) / 100

	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

func canTransition(from, to Status) bool {
	switch from {
	case Ready:
		return to == Uploading
	case Uploading:
		return to == Completed || to == Failed
	default:
		return false
	}
}
