package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// lexical
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004

	// markup syntax
	SynInfo                    Code = 2000
	SynUnexpectedToken         Code = 2001
	SynUnclosedTag             Code = 2002
	SynMismatchedCloseTag      Code = 2003
	SynUnexpectedCloseTag      Code = 2004
	SynExpectTagName           Code = 2005
	SynExpectExpression        Code = 2006
	SynUnclosedDelimiter       Code = 2007
	SynExpectAttrName          Code = 2008
	SynEmptyView               Code = 2009
	SynCloseTagGenericMismatch Code = 2010
	SynAttributeShape          Code = 2011
	SynDuplicateAttribute      Code = 2012

	// name resolution and binding
	ResInfo                      Code = 3000
	ResUnknownComponent          Code = 3001
	ResUnknownSlot               Code = 3002
	ResUndefinedSlot             Code = 3003
	ResGenericArityMismatch      Code = 3004
	ResSlotMissing               Code = 3005
	ResSlotCardinalityExceeded   Code = 3006
	ResUnexpectedChildren        Code = 3007
	ResUnexpectedChildrenBinding Code = 3008
	ResMissingChildrenBinding    Code = 3009
	ResChildrenArityMismatch     Code = 3010
	ResAttrNotApplicable         Code = 3011
	ResUnknownElement            Code = 3012
	ResSlotTypeMismatch          Code = 3013

	// host type check of the lowered calls
	TypInfo           Code = 4000
	TypMismatch       Code = 4001
	TypMissingField   Code = 4002
	TypUnknownProp    Code = 4003
	TypUnresolvedName Code = 4004
	TypNotClonable    Code = 4005
	TypNotCallable    Code = 4006
	TypArgCount       Code = 4007
	TypUnreachable    Code = 4008
	TypGenericBound   Code = 4009

	IOLoadFileError Code = 5001
	IOCacheError    Code = 5002

	ProjInfo            Code = 6000
	ProjInvalidManifest Code = 6001
	ProjUnknownKey      Code = 6002
	ProjInvalidRegistry Code = 6003

	ObsInfo    Code = 7000
	ObsTimings Code = 7001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                  "Unknown error",
		LexInfo:                      "Lexical information",
		LexUnknownChar:               "Unknown character",
		LexUnterminatedString:        "Unterminated string literal",
		LexUnterminatedBlockComment:  "Unterminated block comment",
		LexBadNumber:                 "Malformed number literal",
		SynInfo:                      "Syntax information",
		SynUnexpectedToken:           "Unexpected token",
		SynUnclosedTag:               "Unclosed tag",
		SynMismatchedCloseTag:        "Closing tag does not match opening tag",
		SynUnexpectedCloseTag:        "Closing tag without an open tag",
		SynExpectTagName:             "Expected tag name",
		SynExpectExpression:          "Expected expression",
		SynUnclosedDelimiter:         "Unclosed delimiter",
		SynExpectAttrName:            "Expected attribute name",
		SynEmptyView:                 "Empty view",
		SynCloseTagGenericMismatch:   "Closing tag generics differ from opening tag",
		SynAttributeShape:            "Malformed attribute",
		SynDuplicateAttribute:        "Duplicate attribute",
		ResInfo:                      "Resolution information",
		ResUnknownComponent:          "Unknown component",
		ResUnknownSlot:               "Unknown slot",
		ResUndefinedSlot:             "Slot is not declared by the parent",
		ResGenericArityMismatch:      "Wrong number of generic arguments",
		ResSlotMissing:               "Required slot is missing",
		ResSlotCardinalityExceeded:   "Too many children for slot",
		ResUnexpectedChildren:        "Children are not accepted",
		ResUnexpectedChildrenBinding: "Children cannot be bound with let:",
		ResMissingChildrenBinding:    "Children closure needs let: bindings",
		ResChildrenArityMismatch:     "Wrong number of let: bindings",
		ResAttrNotApplicable:         "Attribute does not apply here",
		ResUnknownElement:            "Unknown HTML element",
		ResSlotTypeMismatch:          "Slot field expects another slot",
		TypInfo:                      "Type information",
		TypMismatch:                  "Mismatched types",
		TypMissingField:              "Missing required field",
		TypUnknownProp:               "Unknown prop",
		TypUnresolvedName:            "Unresolved name",
		TypNotClonable:               "Type is not Clone",
		TypNotCallable:               "Value is not callable",
		TypArgCount:                  "Wrong number of arguments",
		TypUnreachable:               "Unreachable expression",
		TypGenericBound:              "Generic bound not satisfied",
		IOLoadFileError:              "I/O load file error",
		IOCacheError:                 "Result cache error",
		ProjInfo:                     "Project information",
		ProjInvalidManifest:          "Invalid project manifest",
		ProjUnknownKey:               "Unknown manifest key",
		ProjInvalidRegistry:          "Invalid component registry",
		ObsInfo:                      "Observability information",
		ObsTimings:                   "Pipeline timings",
	}

	// kind names as they appear in JSON output and error taxonomies
	codeKind = map[Code]string{
		LexUnknownChar:               "SyntaxError",
		LexUnterminatedString:        "SyntaxError",
		LexUnterminatedBlockComment:  "SyntaxError",
		LexBadNumber:                 "SyntaxError",
		SynUnexpectedToken:           "SyntaxError",
		SynUnclosedTag:               "SyntaxError",
		SynMismatchedCloseTag:        "SyntaxError",
		SynUnexpectedCloseTag:        "SyntaxError",
		SynExpectTagName:             "SyntaxError",
		SynExpectExpression:          "SyntaxError",
		SynUnclosedDelimiter:         "SyntaxError",
		SynExpectAttrName:            "SyntaxError",
		SynEmptyView:                 "SyntaxError",
		SynCloseTagGenericMismatch:   "CloseTagGenericMismatch",
		SynAttributeShape:            "AttributeShapeError",
		SynDuplicateAttribute:        "DuplicateAttribute",
		ResUnknownComponent:          "UnknownComponent",
		ResUnknownSlot:               "UnknownSlot",
		ResUndefinedSlot:             "UndefinedSlot",
		ResGenericArityMismatch:      "GenericArityMismatch",
		ResSlotMissing:               "SlotMissing",
		ResSlotCardinalityExceeded:   "SlotCardinalityExceeded",
		ResUnexpectedChildren:        "UnexpectedChildren",
		ResUnexpectedChildrenBinding: "UnexpectedChildrenBinding",
		ResMissingChildrenBinding:    "MissingChildrenBinding",
		ResChildrenArityMismatch:     "ChildrenArityMismatch",
		ResAttrNotApplicable:         "AttrNotApplicable",
		ResUnknownElement:            "UnknownElement",
		ResSlotTypeMismatch:          "SlotTypeMismatch",
		TypMismatch:                  "TypeMismatch",
		TypMissingField:              "MissingField",
		TypUnknownProp:               "UnknownProp",
		TypUnresolvedName:            "UnresolvedName",
		TypNotClonable:               "NotClonable",
		TypNotCallable:               "NotCallable",
		TypArgCount:                  "ArgCountMismatch",
		TypUnreachable:               "Unreachable",
		TypGenericBound:              "TypeMismatch",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

// Kind returns the taxonomy name of the code, e.g. "SlotMissing".
func (c Code) Kind() string {
	if k, ok := codeKind[c]; ok {
		return k
	}
	return "Other"
}

// Derived reports whether diagnostics with this code can be a mere
// consequence of an earlier failure at the same span. The Collector
// drops derived diagnostics at spans that already hold an error.
func (c Code) Derived() bool {
	switch c {
	case TypMismatch, TypMissingField, TypUnknownProp, TypNotClonable,
		TypNotCallable, TypArgCount, TypUnreachable, TypGenericBound:
		return true
	}
	return false
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
