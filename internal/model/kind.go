// Package model defines the document models consumed by the schema transcoder.
// A model is an explicit, ordered list of named field descriptors drawn from a
// closed kind taxonomy, with optional single-level inheritance.
package model

import (
	"fmt"
)

// Kind is the closed category of a declared field
type Kind int

const (
	// KindInvalid is the zero value and never a valid declaration
	KindInvalid Kind = iota

	// Scalar kinds
	KindBinary
	KindBoolean
	KindComplexDateTime
	KindDate
	KindDateTime
	KindDecimal
	KindDecimal128
	KindDict
	KindDynamic
	KindEmail
	KindEnum
	KindFloat
	KindInt
	KindLong
	KindObjectID
	KindSequence
	KindString
	KindURL
	KindUUID

	// Reference kinds (serialized as the foreign key)
	KindReference
	KindLazyReference
	KindCachedReference
	KindGenericReference
	KindGenericLazyReference

	// Embedded document kinds
	KindEmbeddedDocument
	KindGenericEmbeddedDocument

	// Container kinds
	KindList
	KindSortedList
	KindEmbeddedDocumentList
	KindMap

	// Geometry kinds
	KindGeoPoint
	KindPoint
	KindLineString
	KindPolygon
	KindMultiPoint
	KindMultiLineString
	KindMultiPolygon

	kindSentinel
)

var kindNames = map[Kind]string{
	KindBinary:                  "binary",
	KindBoolean:                 "boolean",
	KindComplexDateTime:         "complex_datetime",
	KindDate:                    "date",
	KindDateTime:                "datetime",
	KindDecimal:                 "decimal",
	KindDecimal128:              "decimal128",
	KindDict:                    "dict",
	KindDynamic:                 "dynamic",
	KindEmail:                   "email",
	KindEnum:                    "enum",
	KindFloat:                   "float",
	KindInt:                     "int",
	KindLong:                    "long",
	KindObjectID:                "object_id",
	KindSequence:                "sequence",
	KindString:                  "string",
	KindURL:                     "url",
	KindUUID:                    "uuid",
	KindReference:               "reference",
	KindLazyReference:           "lazy_reference",
	KindCachedReference:         "cached_reference",
	KindGenericReference:        "generic_reference",
	KindGenericLazyReference:    "generic_lazy_reference",
	KindEmbeddedDocument:        "embedded_document",
	KindGenericEmbeddedDocument: "generic_embedded_document",
	KindList:                    "list",
	KindSortedList:              "sorted_list",
	KindEmbeddedDocumentList:    "embedded_document_list",
	KindMap:                     "map",
	KindGeoPoint:                "geo_point",
	KindPoint:                   "point",
	KindLineString:              "line_string",
	KindPolygon:                 "polygon",
	KindMultiPoint:              "multi_point",
	KindMultiLineString:         "multi_line_string",
	KindMultiPolygon:            "multi_polygon",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// String returns the declaration tag of the kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k belongs to the taxonomy
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindSentinel
}

// ParseKind converts a declaration tag to a Kind
func ParseKind(s string) (Kind, error) {
	if k, ok := kindsByName[s]; ok {
		return k, nil
	}
	return KindInvalid, fmt.Errorf("unknown field kind: %s", s)
}

// IsListLike returns true for array-shaped container kinds
func (k Kind) IsListLike() bool {
	return k == KindList || k == KindSortedList || k == KindEmbeddedDocumentList
}

// IsMapLike returns true for the typed map kind
func (k Kind) IsMapLike() bool {
	return k == KindMap
}

// IsReference returns true for kinds serialized as a foreign key
func (k Kind) IsReference() bool {
	switch k {
	case KindReference, KindLazyReference, KindCachedReference,
		KindGenericReference, KindGenericLazyReference:
		return true
	}
	return false
}

// IsEmbedded returns true for kinds that inline another document
func (k Kind) IsEmbedded() bool {
	return k == KindEmbeddedDocument || k == KindGenericEmbeddedDocument
}

// IsGeo returns true for the GeoJSON shapes that accept the dual representation.
// KindGeoPoint is a raw coordinate pair and is not included.
func (k Kind) IsGeo() bool {
	switch k {
	case KindPoint, KindLineString, KindPolygon,
		KindMultiPoint, KindMultiLineString, KindMultiPolygon:
		return true
	}
	return false
}

// NeedsTarget returns true when the kind must name a target model
func (k Kind) NeedsTarget() bool {
	switch k {
	case KindEmbeddedDocument, KindReference, KindLazyReference, KindCachedReference:
		return true
	}
	return false
}
