// Package wikikb turns wikipedia xml dumps into a typed knowledge base.
//
// The dumps are available from the wikimedia group here:
//    http://dumps.wikimedia.org/
//
// This package holds the low level pieces: the dump readers, the
// markup helpers, the infobox/section extractor and the coordinate
// parser.  The canonicalizers live in canon, classification in
// classify, the per kind extractors in entity and the output format
// in tsv.  The programs under tools show how they fit together.
package wikikb
