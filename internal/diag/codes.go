package diag

import (
	"fmt"
)

type Code uint16

const (
	// Unknown/unclassified, kept as a catch-all for forward compatibility.
	UnknownCode Code = 0

	// Lexical (1000-1999). The lexer is an external collaborator; the range
	// is reserved so its diagnostics interleave cleanly with ours.
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003

	// Syntactic (2000-2999). Reserved for the external parser.
	SynInfo            Code = 2000
	SynUnexpectedToken Code = 2001
	SynExpectType      Code = 2002
	SynExpectName      Code = 2003

	// Binder (3000-3999): name binding and declaration-merging conflicts
	// surfaced while constructing symbol tables.
	BindInfo                 Code = 3000
	BindDuplicateValue       Code = 3001
	BindDuplicateType        Code = 3002
	BindShadowedTypeParam    Code = 3003
	BindExportConflict       Code = 3004
	BindAmbientMergeConflict Code = 3005
	BindGlobalAugmentOutside Code = 3006
	BindImportAfterExportEq  Code = 3007
	BindUnreachableAugment   Code = 3008

	// I/O (4000-4999).
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001

	// Module resolution (5000-5999): the "resolve specifier -> file" contract
	// the export router depends on.
	ProjInfo              Code = 5000
	ProjCannotFindModule  Code = 5001
	ProjSelfImport        Code = 5002
	ProjImportCycle       Code = 5003
	ProjInvalidModulePath Code = 5004
	ProjDuplicateModule   Code = 5005
	ProjMissingModule     Code = 5006
	ProjDependencyFailed  Code = 5007

	// Type checker core (9000-9999): the diagnostics the resolution and
	// narrowing engine itself emits. Each is deduplicated by (start, code)
	// through DedupReporter before reaching a bag.
	TcInfo                         Code = 9000
	TcMissingName                  Code = 9001
	TcMissingProperty              Code = 9002
	TcCannotFindModule             Code = 9003
	TcNoDefaultExport              Code = 9004
	TcNoExportedMember             Code = 9005
	TcGenericRequiresTypeArguments Code = 9006
	TcCannotUseTypeAsValue         Code = 9007
	TcCannotUseValueAsType         Code = 9008
	TcWrongTypeArgumentArity       Code = 9009
	TcPropertyNotAccessible        Code = 9010
	TcHeritageNotConstructable     Code = 9011
	TcEnumMemberNotConstant        Code = 9012
	TcExportEqualsUnresolved       Code = 9013
	TcAliasCycle                   Code = 9014
)

var (
	codeDescription = map[Code]string{
		UnknownCode: "Unknown error",

		LexInfo:               "Lexical information",
		LexUnknownChar:        "Unknown character",
		LexUnterminatedString: "Unterminated string literal",
		LexBadNumber:          "Malformed numeric literal",

		SynInfo:            "Syntactic information",
		SynUnexpectedToken: "Unexpected token",
		SynExpectType:      "Type expected",
		SynExpectName:      "Identifier expected",

		BindInfo:                 "Binder information",
		BindDuplicateValue:       "Duplicate identifier in value space",
		BindDuplicateType:        "Duplicate identifier in type space",
		BindShadowedTypeParam:    "Type parameter shadows outer type parameter",
		BindExportConflict:       "Export declaration conflicts with exported name",
		BindAmbientMergeConflict: "Ambient declaration cannot merge with this declaration",
		BindGlobalAugmentOutside: "Global augmentation is only allowed in modules",
		BindImportAfterExportEq:  "Named exports cannot follow an export-equals declaration",
		BindUnreachableAugment:   "Module augmentation targets an unresolved module",

		IOInfo:          "I/O information",
		IOLoadFileError: "I/O load file error",

		ProjInfo:              "Module resolution information",
		ProjCannotFindModule:  "Cannot resolve module specifier to a file",
		ProjSelfImport:        "Module imports itself",
		ProjImportCycle:       "Import cycle detected",
		ProjInvalidModulePath: "Invalid module path",
		ProjDuplicateModule:   "Duplicate module definition",
		ProjMissingModule:     "Missing module",
		ProjDependencyFailed:  "Dependency module has errors",

		TcInfo:                         "Type checker information",
		TcMissingName:                  "Cannot find name",
		TcMissingProperty:              "Property does not exist on type",
		TcCannotFindModule:             "Cannot find module",
		TcNoDefaultExport:              "Module has no default export",
		TcNoExportedMember:             "Module has no exported member",
		TcGenericRequiresTypeArguments: "Generic type requires type arguments",
		TcCannotUseTypeAsValue:         "Cannot use a type-only import or export as a value",
		TcCannotUseValueAsType:         "Value cannot be used as a type",
		TcWrongTypeArgumentArity:       "Wrong number of type arguments",
		TcPropertyNotAccessible:        "Property is not accessible from this location",
		TcHeritageNotConstructable:     "Base expression is not constructable",
		TcEnumMemberNotConstant:        "Enum member initializer is not a constant expression",
		TcExportEqualsUnresolved:       "Export-equals target cannot be resolved",
		TcAliasCycle:                   "Import alias resolution forms a cycle",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("BND%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("TC%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
