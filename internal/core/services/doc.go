// Package services implements the driving ports: ingestion of local
// directories into the document store and indexes, and hybrid search
// over them. Services orchestrate the parser, the query DSL and the
// driven adapters; they hold the business logic and nothing
// infrastructure-specific.
package services
