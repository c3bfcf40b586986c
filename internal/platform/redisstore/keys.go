package redisstore

import "github.com/google/uuid"

// Key builders for the persisted layout. Kept in one place so the layout
// documented in doc.go has a single source of truth.

func entryKey(entryID uuid.UUID) string {
	return "entry:" + entryID.String()
}

func entryImagesKey(entryID uuid.UUID) string {
	return "entry:" + entryID.String() + ":images"
}

func imagePayloadKey(imageID uuid.UUID) string {
	return "image:" + imageID.String()
}

func imageMetadataKey(imageID uuid.UUID) string {
	return "image:" + imageID.String() + ":metadata"
}
