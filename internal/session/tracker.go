package session

import (
	"sync"

	"github.com/filegate/filegate/internal/model"
)

// Tracker owns all ephemeral conversation state, keyed by user id. Each user
// holds at most one state per flow; starting a flow again silently replaces
// the previous state for that key. Users never share state.
type Tracker struct {
	mu       sync.Mutex
	uploads  map[int64]*UploadState
	channels map[int64]*ChannelState
	timers   map[int64]*TimerState
}

func NewTracker() *Tracker {
	return &Tracker{
		uploads:  make(map[int64]*UploadState),
		channels: make(map[int64]*ChannelState),
		timers:   make(map[int64]*TimerState),
	}
}

// StartUpload opens an upload conversation for the category.
func (t *Tracker) StartUpload(userID int64, categoryID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.uploads[userID] = &UploadState{CategoryID: categoryID}
}

// AppendFile adds a file to the user's open upload and returns the new
// count. ok is false when no upload is open.
func (t *Tracker) AppendFile(userID int64, f model.File) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	up, ok := t.uploads[userID]
	if !ok {
		return 0, false
	}
	up.Files = append(up.Files, f)
	return len(up.Files), true
}

// HasUpload reports whether the user has an open upload conversation.
func (t *Tracker) HasUpload(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.uploads[userID]
	return ok
}

// FinishUpload closes the user's upload conversation and returns the
// accumulated state. ok is false when no upload is open.
func (t *Tracker) FinishUpload(userID int64) (*UploadState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	up, ok := t.uploads[userID]
	if !ok {
		return nil, false
	}
	delete(t.uploads, userID)
	return up, true
}

// StartChannel opens a channel-registration conversation.
func (t *Tracker) StartChannel(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.channels[userID] = &ChannelState{Stage: StageChannelID}
}

// ChannelInput applies one text turn. done reports a completed
// registration, in which case the returned state carries all three fields
// and the conversation is closed. open is false when no registration is in
// progress for the user.
func (t *Tracker) ChannelInput(userID int64, input string) (state ChannelState, done, open bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.channels[userID]
	if !ok {
		return ChannelState{}, false, false
	}
	next, done := advanceChannel(*cur, input)
	if done {
		delete(t.channels, userID)
	} else {
		*cur = next
	}
	return next, done, true
}

// StartTimer opens a timer-entry conversation bound to a category.
func (t *Tracker) StartTimer(userID int64, categoryID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timers[userID] = &TimerState{CategoryID: categoryID}
}

// TimerCategory returns the category bound to the user's open timer entry
// without closing it; invalid input keeps the conversation waiting.
func (t *Tracker) TimerCategory(userID int64) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ts, ok := t.timers[userID]
	if !ok {
		return "", false
	}
	return ts.CategoryID, true
}

// FinishTimer closes the user's timer-entry conversation.
func (t *Tracker) FinishTimer(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.timers, userID)
}

// HasSession reports whether the user has any open conversation.
func (t *Tracker) HasSession(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.uploads[userID]; ok {
		return true
	}
	if _, ok := t.channels[userID]; ok {
		return true
	}
	_, ok := t.timers[userID]
	return ok
}

// Cancel discards every open conversation for the user and reports whether
// there was anything to discard. Other users are untouched.
func (t *Tracker) Cancel(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, hadUpload := t.uploads[userID]
	_, hadChannel := t.channels[userID]
	_, hadTimer := t.timers[userID]
	delete(t.uploads, userID)
	delete(t.channels, userID)
	delete(t.timers, userID)
	return hadUpload || hadChannel || hadTimer
}
