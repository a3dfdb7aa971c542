// Package staging keeps the files a user picked for upload and drives them
// through ready, uploading and a terminal completed or error state.
package staging

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defProgressTick = 100 * time.Millisecond
	defProgressStep = 10
	defProgressCap  = 90
)

// Alerter surfaces a user-facing message.
type Alerter interface {
	Alert(msg string)
}

type AlertFunc func(msg string)

func (f AlertFunc) Alert(msg string) {
	f(msg)
}

// Uploader sends the content of one staged file.
type Uploader interface {
	Upload(ctx context.Context, f UploadedFile, r io.Reader) error
}

type UploaderFunc func(ctx context.Context, f UploadedFile, r io.Reader) error

func (f UploaderFunc) Upload(ctx context.Context, file UploadedFile, r io.Reader) error {
	return f(ctx, file, r)
}

type CommitResult struct {
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

type Option func(*Queue)

func WithValidator(v Validator) Option {
	return func(q *Queue) { q.validate = v }
}

func WithAlerter(a Alerter) Option {
	return func(q *Queue) { q.alerter = a }
}

func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) { q.logger = l }
}

// WithProgress tunes the simulated progress shown while an upload is in flight.
func WithProgress(tick time.Duration, step, limit int) Option {
	return func(q *Queue) {
		q.tick = tick
		q.step = step
		q.limit = limit
	}
}

// WithObserver registers fn to be called with a copy of a file after every change.
func WithObserver(fn func(UploadedFile)) Option {
	return func(q *Queue) { q.observer = fn }
}

func WithIDGenerator(fn func() string) Option {
	return func(q *Queue) { q.newID = fn }
}

type Queue struct {
	mu    sync.Mutex
	files []*UploadedFile

	validate Validator
	alerter  Alerter
	logger   *slog.Logger
	observer func(UploadedFile)
	newID    func() string

	tick  time.Duration
	step  int
	limit int
}

func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		validate: ZipOnly,
		alerter:  AlertFunc(func(string) {}),
		logger:   slog.Default(),
		newID:    uuid.NewString,
		tick:     defProgressTick,
		step:     defProgressStep,
		limit:    defProgressCap,
	}
	for _, opt := range opts {
		opt(q)
	}

	return q
}

// Add stages every valid input with status ready. Invalid inputs are
// reported through the alerter and never recorded.
func (q *Queue) Add(inputs ...Input) []UploadedFile {
	var added []UploadedFile
	for _, in := range inputs {
		if err := q.validate(in); err != nil {
			q.logger.Warn("Rejected staged file", slog.String("name", in.Name), slog.Any("error", err))
			q.alerter.Alert(RejectionMessage(in.Name))

			continue
		}

		f := &UploadedFile{
			ID:           q.newID(),
			Name:         in.Name,
			Size:         in.Size,
			Type:         in.Type,
			LastModified: in.LastModified,
			Status:       Ready,
			open:         in.Open,
		}

		q.mu.Lock()
		q.files = append(q.files, f)
		cp := *f
		q.mu.Unlock()

		q.notify(cp)
		added = append(added, cp)
	}

	return added
}

// Remove drops a file regardless of its status. An upload already in flight
// is not cancelled; its outcome is discarded.
func (q *Queue) Remove(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.index(id)
	if i < 0 {
		return ErrFileNotFound
	}
	q.files = slices.Delete(q.files, i, i+1)

	return nil
}

func (q *Queue) Files() []UploadedFile {
	q.mu.Lock()
	defer q.mu.Unlock()

	res := make([]UploadedFile, len(q.files))
	for i, f := range q.files {
		res[i] = *f
	}

	return res
}

func (q *Queue) Get(id string) (UploadedFile, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.index(id)
	if i < 0 {
		return UploadedFile{}, ErrFileNotFound
	}

	return *q.files[i], nil
}

// HasStatus reports whether any staged file is in one of the given states.
func (q *Queue) HasStatus(statuses ...Status) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, f := range q.files {
		if slices.Contains(statuses, f.Status) {
			return true
		}
	}

	return false
}

func (q *Queue) TotalSize() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	var total int64
	for _, f := range q.files {
		total += f.Size
	}

	return total
}

// Commit uploads every ready file, one at a time, in staging order. A failed
// file is marked error and does not stop the others. Only context
// cancellation aborts the run; files not yet started stay ready.
func (q *Queue) Commit(ctx context.Context, up Uploader) (CommitResult, error) {
	var res CommitResult
	for _, id := range q.ready() {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		f, ok := q.transition(id, Uploading, 0)
		if !ok {
			continue
		}

		err := q.upload(ctx, f, up)
		if err != nil {
			q.logger.Error("Failed to upload file",
				slog.Group("file",
					slog.String("id", f.ID),
					slog.String("name", f.Name),
				),
				slog.Any("error", err),
			)
			if _, ok := q.transition(id, Failed, 0); ok {
				res.Failed++
			}

			continue
		}

		if _, ok := q.transition(id, Completed, 100); ok {
			res.Completed++
		}
	}

	return res, nil
}

func (q *Queue) upload(ctx context.Context, f UploadedFile, up Uploader) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		q.simulateProgress(f.ID, stop)
	}()
	defer func() {
		close(stop)
		wg.Wait()
	}()

	return up.Upload(ctx, f, rc)
}

func (q *Queue) simulateProgress(id string, stop <-chan struct{}) {
	ticker := time.NewTicker(q.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			q.mu.Lock()
			i := q.index(id)
			if i < 0 || q.files[i].Status != Uploading {
				q.mu.Unlock()

				return
			}
			f := q.files[i]
			if f.Progress >= q.limit {
				q.mu.Unlock()

				continue
			}
			f.Progress = min(f.Progress+q.step, q.limit)
			cp := *f
			q.mu.Unlock()

			q.notify(cp)
		}
	}
}

func (q *Queue) ready() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	var ids []string
	for _, f := range q.files {
		if f.Status == Ready {
			ids = append(ids, f.ID)
		}
	}

	return ids
}

// transition moves a file forward and reports whether it is still tracked
// and the move was legal.
func (q *Queue) transition(id string, to Status, progress int) (UploadedFile, bool) {
	q.mu.Lock()
	i := q.index(id)
	if i < 0 || !canTransition(q.files[i].Status, to) {
		q.mu.Unlock()

		return UploadedFile{}, false
	}
	f := q.files[i]
	f.Status = to
	f.Progress = progress
	cp := *f
	q.mu.Unlock()

	q.notify(cp)

	return cp, true
}

func (q *Queue) index(id string) int {
	return slices.IndexFunc(q.files, func(f *UploadedFile) bool { return f.ID == id })
}

func (q *Queue) notify(f UploadedFile) {
	if q.observer != nil {
		q.observer(f)
	}
}
