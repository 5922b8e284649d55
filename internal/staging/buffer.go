// Package staging holds the media a user has picked for a new or edited movie
// until the form is submitted. Each entry gets a stable ID when it is added;
// previews are computed asynchronously and attached by that ID, so a slow
// preview can never land on the wrong entry.
package staging

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dharsanguruparan/cinebook/internal/processing"
)

// PreviewState tracks the asynchronous preview of an entry.
type PreviewState int

const (
	PreviewPending PreviewState = iota
	PreviewReady
	PreviewFailed
)

func (s PreviewState) String() string {
	switch s {
	case PreviewReady:
		return "ready"
	case PreviewFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Entry is one staged file.
type Entry struct {
	ID      uuid.UUID
	File    File
	Preview string
	State   PreviewState
	Err     error
}

// Scheduler runs preview jobs. *processing.Processor satisfies it.
type Scheduler interface {
	Submit(job processing.Job)
}

// Buffer is the staging area of one create/update view: an ordered list of
// images plus a single video slot. It is safe for concurrent use because
// preview completions arrive from worker goroutines.
type Buffer struct {
	mu      sync.Mutex
	pool    Scheduler
	images  []*Entry
	video   *Entry
	pending int
	idle    chan struct{}
}

// New returns an empty buffer whose previews are computed by pool.
func New(pool Scheduler) *Buffer {
	idle := make(chan struct{})
	close(idle)
	return &Buffer{pool: pool, idle: idle}
}

// AddImages appends files in order and schedules their previews. It returns
// the IDs assigned to the new entries.
func (b *Buffer) AddImages(files ...File) []uuid.UUID {
	if len(files) == 0 {
		return nil
	}
	entries := make([]*Entry, len(files))
	ids := make([]uuid.UUID, len(files))
	b.mu.Lock()
	for i, f := range files {
		e := &Entry{ID: uuid.New(), File: f}
		entries[i] = e
		ids[i] = e.ID
		b.images = append(b.images, e)
	}
	b.beginLocked(len(entries))
	b.mu.Unlock()

	// Submit may call back synchronously, so it must run without the lock.
	for _, e := range entries {
		b.schedule(e)
	}
	return ids
}

// RemoveImageAt removes the image at position i together with its preview.
// Out-of-range positions, including any position on an empty buffer, are a
// no-op and return false.
func (b *Buffer) RemoveImageAt(i int) bool {
	b.mu.Lock()
	removed := b.removeAtLocked(i)
	b.mu.Unlock()
	discard(removed)
	return removed != nil
}

// RemoveImage removes the image with the given ID. Removing an ID that is
// already gone is a no-op, so repeated removals never touch other entries.
func (b *Buffer) RemoveImage(id uuid.UUID) bool {
	b.mu.Lock()
	removed := b.removeAtLocked(b.indexLocked(id))
	b.mu.Unlock()
	discard(removed)
	return removed != nil
}

// Remove drops the images and the video whose IDs are listed and reports how
// many entries went. Entries staged after the IDs were taken stay.
func (b *Buffer) Remove(ids ...uuid.UUID) int {
	if len(ids) == 0 {
		return 0
	}
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	var removed []*Entry
	b.mu.Lock()
	kept := b.images[:0]
	for _, e := range b.images {
		if _, ok := drop[e.ID]; ok {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	clear(b.images[len(kept):])
	b.images = kept
	if b.video != nil {
		if _, ok := drop[b.video.ID]; ok {
			removed = append(removed, b.video)
			b.video = nil
		}
	}
	b.mu.Unlock()
	for _, e := range removed {
		discard(e)
	}
	return len(removed)
}

// SetVideo fills the video slot, replacing and discarding any previous video.
func (b *Buffer) SetVideo(f File) uuid.UUID {
	e := &Entry{ID: uuid.New(), File: f}
	b.mu.Lock()
	old := b.video
	b.video = e
	b.beginLocked(1)
	b.mu.Unlock()

	discard(old)
	b.schedule(e)
	return e.ID
}

// ClearVideo empties the video slot. It reports whether a video was staged.
func (b *Buffer) ClearVideo() bool {
	b.mu.Lock()
	old := b.video
	b.video = nil
	b.mu.Unlock()
	discard(old)
	return old != nil
}

// Reset discards every staged file. Previews still in flight are ignored when
// they complete.
func (b *Buffer) Reset() {
	b.mu.Lock()
	images, video := b.images, b.video
	b.images, b.video = nil, nil
	b.mu.Unlock()
	for _, e := range images {
		discard(e)
	}
	discard(video)
}

// Len returns the number of staged images.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.images)
}

// Images returns a snapshot of the staged images in order.
func (b *Buffer) Images() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, len(b.images))
	for i, e := range b.images {
		out[i] = *e
	}
	return out
}

// Video returns a snapshot of the video slot.
func (b *Buffer) Video() (Entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.video == nil {
		return Entry{}, false
	}
	return *b.video, true
}

// Entry returns a snapshot of the image or video with the given ID.
func (b *Buffer) Entry(id uuid.UUID) (Entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e := b.lookupLocked(id); e != nil {
		return *e, true
	}
	return Entry{}, false
}

// Files returns the staged image files and the video file (nil when empty),
// ready to hand to the gateway.
func (b *Buffer) Files() ([]File, File) {
	b.mu.Lock()
	defer b.mu.Unlock()
	images := make([]File, len(b.images))
	for i, e := range b.images {
		images[i] = e.File
	}
	var video File
	if b.video != nil {
		video = b.video.File
	}
	return images, video
}

// Pending returns the number of previews still being computed, including
// those of entries that were removed meanwhile.
func (b *Buffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// WaitPreviews blocks until no preview is pending or ctx is done.
func (b *Buffer) WaitPreviews(ctx context.Context) error {
	b.mu.Lock()
	idle := b.idle
	b.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Buffer) beginLocked(n int) {
	if b.pending == 0 {
		b.idle = make(chan struct{})
	}
	b.pending += n
}

func (b *Buffer) schedule(e *Entry) {
	id := e.ID
	b.pool.Submit(processing.Job{
		EntryID: id,
		Source:  e.File,
		Done: func(preview string, err error) {
			b.complete(id, preview, err)
		},
	})
}

func (b *Buffer) complete(id uuid.UUID, preview string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e := b.lookupLocked(id); e != nil {
		if err != nil {
			e.State = PreviewFailed
			e.Err = err
		} else {
			e.State = PreviewReady
			e.Preview = preview
		}
	}
	b.pending--
	if b.pending == 0 {
		close(b.idle)
	}
}

// removeAtLocked splices out the image at i and returns it, or nil when i is
// out of range.
func (b *Buffer) removeAtLocked(i int) *Entry {
	if i < 0 || i >= len(b.images) {
		return nil
	}
	removed := b.images[i]
	last := len(b.images) - 1
	copy(b.images[i:], b.images[i+1:])
	b.images[last] = nil
	b.images = b.images[:last]
	return removed
}

func (b *Buffer) indexLocked(id uuid.UUID) int {
	for i, e := range b.images {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (b *Buffer) lookupLocked(id uuid.UUID) *Entry {
	if i := b.indexLocked(id); i >= 0 {
		return b.images[i]
	}
	if b.video != nil && b.video.ID == id {
		return b.video
	}
	return nil
}

func discard(e *Entry) {
	if e == nil {
		return
	}
	if d, ok := e.File.(Discarder); ok {
		d.Discard()
	}
}
