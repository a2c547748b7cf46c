package core

import "fmt"

// VectorKey is the index key for one embedded chunk.
func VectorKey(ownerID, filename string, chunkIndex int) string {
	return fmt.Sprintf("%s/%s/%d", ownerID, filename, chunkIndex)
}

// VectorKeyPrefix covers every chunk of one document, for bulk
// deletion.
func VectorKeyPrefix(ownerID, filename string) string {
	return ownerID + "/" + filename + "/"
}

// ObjectKey is the object-store key for a document: owner/filename.
func ObjectKey(ownerID, filename string) string {
	return ownerID + "/" + filename
}
