package fileset

import (
	"fmt"
	"math"
	"path"
	"strings"
)

// FileType is the backend's classification of a project file.
type FileType string

const (
	JSONSchema FileType = "JSON_SCHEMA"
	XSDSchema  FileType = "XSD_SCHEMA"
	TestData   FileType = "TEST_DATA"
	VMTemplate FileType = "VM_TEMPLATE"
)

// Valid reports whether t is one of the known type tags.
func (t FileType) Valid() bool {
	switch t {
	case JSONSchema, XSDSchema, TestData, VMTemplate:
		return true
	}
	return false
}

// Extension returns the lower-cased text after the last dot of the base name,
// or "" when there is none.
func Extension(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

// TypeByExtension maps a file name to its type. XML files count as XSD
// schemas; anything unrecognized is test data.
func TypeByExtension(name string) FileType {
	switch Extension(name) {
	case "json":
		return JSONSchema
	case "xsd", "xml":
		return XSDSchema
	default:
		return TestData
	}
}

var allowedExtensions = map[string]struct{}{
	"json": {},
	"txt":  {},
	"xml":  {},
	"xsd":  {},
}

// IsAllowedExtension reports whether name may be selected at all.
func IsAllowedExtension(name string) bool {
	_, ok := allowedExtensions[Extension(name)]
	return ok
}

// FormatSize renders a byte count as "0 B", "512 B", "1.5 KB", "3.0 MB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	if i == 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/math.Pow(1024, float64(i)), units[i])
}
