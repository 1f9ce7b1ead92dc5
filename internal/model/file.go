package model

import (
	"time"
)

const (
	FileKindDocument = "document"
	FileKindPhoto    = "photo"
	FileKindVideo    = "video"
	FileKindAudio    = "audio"
)

// MaxCaptionLength is the transport's hard limit for media captions.
const MaxCaptionLength = 1024

type File struct {
	FileID     string    `db:"file_id"` // transport-assigned, unique store-wide
	CategoryID string    `db:"category_id"`
	Seq        int64     `db:"seq"` // delivery order within the category
	FileName   string    `db:"file_name"`
	FileSize   int64     `db:"file_size"`
	FileKind   string    `db:"file_kind"`
	Caption    string    `db:"caption"`
	UploadedAt time.Time `db:"uploaded_at"`
}

// ValidKind reports whether kind is one of the supported file kinds.
func ValidKind(kind string) bool {
	switch kind {
	case FileKindDocument, FileKindPhoto, FileKindVideo, FileKindAudio:
		return true
	}
	return false
}
