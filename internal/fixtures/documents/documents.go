// Package documents holds mapped document fixtures shared by driver tests.
package documents

import "time"

// BlogPost is a mapped document whose serializer tags leave most types
// undeclared so the ODM mapping can supply them. Published is mapped as a
// boolean but explicitly serialized as an integer.
type BlogPost struct {
	ID        string     `odm:"id"`
	Title     string     `odm:"field,type=string" serializer:"groups=comments|post"`
	Slug      string     `odm:"field,type=string"`
	CreatedAt time.Time  `odm:"field,type=date"`
	Published bool       `odm:"field,type=boolean" serializer:"type=integer,name=is_published,groups=post"`
	Comments  []*Comment `odm:"referenceMany,target=Comment"`
	Author    *Author    `odm:"referenceOne" serializer:"groups=post"`
}

// Author is referenced by BlogPost and Comment.
type Author struct {
	ID   string `odm:"id"`
	Name string `odm:"field,type=string" serializer:"name=full_name"`
}

// Comment is referenced many times by BlogPost.
type Comment struct {
	ID     string    `odm:"id"`
	Author *Author   `odm:"referenceOne"`
	Text   string    `odm:"field"`
	Posted time.Time `odm:"field"`
}

// Page exercises node and parent mappings, which are never serialized, and
// multivalue scalar fields.
type Page struct {
	ID       string   `odm:"id"`
	Node     any      `odm:"node"`
	Parent   any      `odm:"parentDocument"`
	Title    string   `odm:"field"`
	Keywords []string `odm:"field"`
	Views    int64    `odm:"field"`
	Rating   float64  `odm:"field"`
	Draft    *Draft   `odm:"referenceOne"`
	Virtual  string
}

// Draft is referenced by Page but deliberately not registered as a document.
type Draft struct {
	Body string
}

// All returns every document registered for the fixture manager.
func All() []any {
	return []any{BlogPost{}, Author{}, Comment{}, Page{}}
}
