// Package plain holds fixtures that no document manager maps.
package plain

import "time"

// BlogPost mirrors documents.BlogPost without any document mapping.
type BlogPost struct {
	ID        string    `serializer:"type=string,groups=comments|post"`
	Title     string    `serializer:"type=string,groups=comments|post"`
	CreatedAt time.Time `serializer:"type=DateTime<'Y-m-d'>,readonly"`
	Published bool      `serializer:"type=boolean,name=is_published"`
	Etag      string    `serializer:"exclude"`
	Tags      []string  `serializer:"type=array<string>,skipempty"`
	Metadata  map[string]int
	internal  string
}

// Timestamps is embedded to check flattening of promoted fields.
type Timestamps struct {
	UpdatedAt time.Time `serializer:"type=DateTime,since=1.2"`
}

// Article embeds Timestamps.
type Article struct {
	Timestamps
	Headline string `serializer:"type=string,desc='Main, visible title'"`
	Secret   string `serializer:"-"`
}
