package project

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"surgetype/internal/source"
)

// ImportMeta is one import clause discovered in a module: the raw specifier
// text and where it appeared.
type ImportMeta struct {
	Path string
	Span source.Span
}

// ModuleKind classifies a checked file.
type ModuleKind uint8

const (
	ModuleKindUnknown ModuleKind = iota
	// ModuleKindModule is a file with at least one import/export clause: it
	// has its own module scope.
	ModuleKindModule
	// ModuleKindScript is a file without import/export: its top-level
	// declarations land in the shared global scope.
	ModuleKindScript
	// ModuleKindDeclaration is an ambient .d.ts file, eligible as a lib
	// context.
	ModuleKindDeclaration
)

// ModuleFileMeta records one file contributing to a module.
type ModuleFileMeta struct {
	Path string
	Span source.Span
	Hash Digest
}

// ModuleMeta is the per-module record the import DAG is built from.
type ModuleMeta struct {
	Name        string
	Path        string // normalized module path: "src/a/b"
	Dir         string // normalized directory: "src/a"
	Kind        ModuleKind
	Span        source.Span  // span of the whole file
	Imports     []ImportMeta // normalized import paths with their spans
	Files       []ModuleFileMeta
	ContentHash Digest // file content hash (from the FileSet)
	ModuleHash  Digest // aggregate hash including dependency hashes
}

// IsValidModuleIdent reports whether name is usable as a module identifier.
func IsValidModuleIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// sourceExtensions are stripped when normalizing a module path, longest
// first so ".d.ts" wins over ".ts".
var sourceExtensions = []string{".d.ts", ".tsx", ".ts"}

// StripSourceExtension removes a recognized source extension from path.
func StripSourceExtension(path string) string {
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(path, ext) {
			return path[:len(path)-len(ext)]
		}
	}
	return path
}

// NormalizeModulePath canonicalizes a module path (an import target or the
// file itself) to "a/b" form: source extension stripped, slashes unified,
// empty segments and "."/".." rejected.
func NormalizeModulePath(path string) (string, error) {
	path = StripSourceExtension(path)
	for path != "" && (path[0] == '/' || path[0] == '\\') {
		path = path[1:]
	}
	var cleaned []string
	curr := ""
	for _, r := range path {
		if r == '\\' || r == '/' {
			if curr == "" {
				return "", errors.New("invalid module path")
			}
			cleaned = append(cleaned, curr)
			curr = ""
		} else {
			curr += string(r)
		}
	}
	if curr != "" {
		cleaned = append(cleaned, curr)
	}
	if len(cleaned) == 0 {
		return "", errors.New("invalid module path")
	}
	for _, seg := range cleaned {
		if seg == "" || seg == "." || seg == ".." {
			return "", errors.New("invalid module path")
		}
	}
	return strings.Join(cleaned, "/"), nil
}

// ErrBareSpecifier marks a non-relative import specifier ("lodash",
// "pkg/sub"): it cannot be resolved against the importer's directory and
// must go through the path-mapping tables instead.
var ErrBareSpecifier = errors.New("bare module specifier")

// ResolveImportPath resolves a relative import specifier ("./x", "../y/z")
// against the importing module's normalized path, producing the normalized
// target module path. Bare specifiers return ErrBareSpecifier; escaping the
// project root is an error.
func ResolveImportPath(importerPath, specifier string) (string, error) {
	if specifier == "" {
		return "", errors.New("empty import path")
	}
	segments := strings.Split(strings.ReplaceAll(specifier, "\\", "/"), "/")
	if segments[0] != "." && segments[0] != ".." {
		return "", ErrBareSpecifier
	}

	var target []string
	if importerPath != "" {
		parts := strings.Split(importerPath, "/")
		if len(parts) > 1 {
			target = append(target, parts[:len(parts)-1]...)
		}
	}
	for _, seg := range segments {
		switch seg {
		case "":
			return "", errors.New("empty import segment")
		case ".":
			continue
		case "..":
			if len(target) == 0 {
				return "", errors.New("import path escapes project root")
			}
			target = target[:len(target)-1]
		default:
			if strings.Contains(seg, "/") {
				return "", fmt.Errorf("import segment %q contains '/'", seg)
			}
			target = append(target, seg)
		}
	}
	if len(target) == 0 {
		return "", errors.New("import resolves to empty path")
	}
	return NormalizeModulePath(strings.Join(target, "/"))
}
