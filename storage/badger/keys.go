package badger

import "strings"

// Key prefixes for different data types
const (
	documentRecordPrefix = "docrec:"
	documentHashPrefix   = "dochash:"
)

// makeDocumentKey generates the key holding an encoded document.
// Format: docrec:name
func makeDocumentKey(name string) []byte {
	return []byte(documentRecordPrefix + name)
}

// makeDocumentHashKey generates the key holding the content ID of an encoded document.
// Format: dochash:name
func makeDocumentHashKey(name string) []byte {
	return []byte(documentHashPrefix + name)
}

// documentNameFromKey extracts the document name from a document key.
func documentNameFromKey(key []byte) string {
	return strings.TrimPrefix(string(key), documentRecordPrefix)
}
