// Package parser turns heterogeneous document files into normalized
// plain text for indexing.
//
// The pipeline is guard -> detect -> extract:
//
//   - Guard keeps every access inside a configured root directory and
//     under a size ceiling, before any read happens.
//   - DetectFormat maps extension and content shape to a parsing
//     strategy, preferring one strict JSON document over a
//     line-oriented reading.
//   - Per-format extraction produces one text blob: passthrough for
//     text/markdown, markup stripping for HTML, delegation to an
//     external engine for PDF/DOCX, and relevance-filtered flattening
//     for JSON/JSONL.
//
// Every transformation here is a deterministic, pure function of the
// input bytes. The only I/O in the package is reading the requested
// file and stat-ing it first.
package parser
