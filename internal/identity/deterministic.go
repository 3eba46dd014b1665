package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DocumentUUID derives the identity of a document from its source path.
// The path is the sole identity key; slugs may collide and never feed in.
func DocumentUUID(sourcePath string) uuid.UUID {
	return UUID("go-mdpub:document:" + strings.TrimSpace(sourcePath))
}

// SectionUUID derives a section identity from its parent document and
// position. Sections are replaced wholesale on update, so re-deriving the
// same id after a delete-and-reinsert cycle is intended.
func SectionUUID(documentID uuid.UUID, position int) uuid.UUID {
	return UUID("go-mdpub:section:" + documentID.String() + ":" + strconv.Itoa(position))
}

// BlockUUID derives a block identity from its parent section and position.
func BlockUUID(sectionID uuid.UUID, position float64) uuid.UUID {
	return UUID("go-mdpub:block:" + sectionID.String() + ":" + strconv.FormatFloat(position, 'f', -1, 64))
}
