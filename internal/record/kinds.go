package record

// Messages holds the response texts a kind sends back to clients.
type Messages struct {
	Created  string
	Deleted  string
	NotFound string
}

// Kind describes one content collection. A single generic store and handler
// serve every kind; only this configuration differs between them.
type Kind struct {
	// Name is both the collection name and the route prefix.
	Name string
	// Fields lists the body fields read on create. Empty means any field.
	Fields []string
	// AttachmentField names the upload form field and the record field that
	// stores the attachment path. Empty for kinds without attachments.
	AttachmentField string
	StampCreatedAt  bool
	// EchoKey is the key under which update responses echo the written fields.
	EchoKey  string
	Messages Messages
}

// HasAttachment reports whether records of this kind carry an uploaded file.
func (k Kind) HasAttachment() bool { return k.AttachmentField != "" }

const listMessage = "Success!"

// ListMessage is the message returned with list-all responses.
func (k Kind) ListMessage() string { return listMessage }

var (
	Projects = Kind{
		Name:            "projects",
		Fields:          []string{"proName", "proCategory", "proShDesc", "proDesc"},
		AttachmentField: "proImg",
		EchoKey:         "project",
		Messages: Messages{
			Created:  "Project Added Successfully",
			Deleted:  "Project deleted",
			NotFound: "Project not found",
		},
	}

	News = Kind{
		Name:    "news",
		EchoKey: "news",
		Messages: Messages{
			Created: "News Added Successfully",
			Deleted: "data Deleted",
		},
	}

	Team = Kind{
		Name:            "team",
		Fields:          []string{"memberName", "memberDesi", "memberCategory"},
		AttachmentField: "memberImg",
		StampCreatedAt:  true,
		EchoKey:         "team",
		Messages: Messages{
			Created:  "New Member Added Successfully",
			Deleted:  "Member deleted",
			NotFound: "Member not found",
		},
	}

	Publications = Kind{
		Name:           "publications",
		Fields:         []string{"publiCategory", "publicationsLink", "publicationsDesc"},
		StampCreatedAt: true,
		EchoKey:        "work",
		Messages: Messages{
			Created: "New publications Added Successfully",
			Deleted: "data Deleted",
		},
	}

	// Articles keeps the "articale" spelling: it is the published route and
	// collection name existing clients use.
	Articles = Kind{
		Name:            "articale",
		Fields:          []string{"title", "date", "proCategory", "link", "authors", "desc", "articaleType"},
		AttachmentField: "artiImg",
		StampCreatedAt:  true,
		EchoKey:         "project",
		Messages: Messages{
			Created:  "Articale Added Successfully",
			Deleted:  "articale deleted",
			NotFound: "articale not found",
		},
	}
)

// All returns every collection served by the API.
func All() []Kind {
	return []Kind{Projects, News, Team, Publications, Articles}
}

// Lookup finds a kind by name.
func Lookup(name string) (Kind, bool) {
	for _, k := range All() {
		if k.Name == name {
			return k, true
		}
	}
	return Kind{}, false
}
