package record

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDField is the document key holding the database-assigned identifier.
const IDField = "_id"

// CreatedAtField is stamped on create for kinds that track creation time.
const CreatedAtField = "createdAt"

// Record is one schema-less document of a collection.
type Record map[string]any

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ID returns the record identifier, or the zero ObjectID when unset.
func (r Record) ID() primitive.ObjectID {
	if oid, ok := r[IDField].(primitive.ObjectID); ok {
		return oid
	}
	return primitive.NilObjectID
}

// String returns the string value stored under key, or "" when the field is
// absent or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// WithoutID returns a copy of r with the identifier removed. Identifiers are
// assigned by the database and never taken from request bodies.
func (r Record) WithoutID() Record {
	out := r.Clone()
	if out == nil {
		out = Record{}
	}
	delete(out, IDField)
	return out
}

// ParseID converts the hex form of an identifier into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, &InvalidIDError{ID: id}
	}
	return oid, nil
}

// Build assembles the document written on create. Kinds with a declared field
// list take exactly those fields (missing ones are stored as null); kinds
// without one store the body as given.
func (k Kind) Build(body Record, attachmentPath string, now time.Time) Record {
	var doc Record
	if len(k.Fields) == 0 {
		doc = body.WithoutID()
	} else {
		doc = make(Record, len(k.Fields)+2)
		for _, f := range k.Fields {
			if v, ok := body[f]; ok {
				doc[f] = v
			} else {
				doc[f] = nil
			}
		}
	}
	if k.HasAttachment() {
		doc[k.AttachmentField] = attachmentPath
	}
	if k.StampCreatedAt {
		doc[CreatedAtField] = now
	}
	return doc
}
