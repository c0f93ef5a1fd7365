package odmtype

// DefaultCollectionType names the container used for reference-many hints.
const DefaultCollectionType = "ArrayCollection"

// DefaultFieldTypes maps document field types onto serializer type strings.
// Types absent from the table leave the property untyped.
func DefaultFieldTypes() map[string]string {
	return map[string]string{
		"string":               "string",
		"text":                 "string",
		"blob":                 "string",
		"binary":               "string",
		"guid":                 "string",
		"uri":                  "string",
		"name":                 "string",
		"path":                 "string",
		"decimal":              "string",
		"integer":              "integer",
		"int":                  "integer",
		"smallint":             "integer",
		"bigint":               "integer",
		"long":                 "integer",
		"float":                "float",
		"double":               "float",
		"boolean":              "boolean",
		"bool":                 "boolean",
		"date":                 "DateTime",
		"datetime":             "DateTime",
		"datetimetz":           "DateTime",
		"time":                 "DateTime",
		"date_immutable":       "DateTimeImmutable",
		"datetime_immutable":   "DateTimeImmutable",
		"datetimetz_immutable": "DateTimeImmutable",
		"time_immutable":       "DateTimeImmutable",
		"array":                "array",
		"json_array":           "array",
		"json":                 "array",
		"simple_array":         "array<string>",
	}
}
