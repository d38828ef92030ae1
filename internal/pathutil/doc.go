// Package pathutil converts between local file paths and the file:// URIs
// used as schema document identifiers, and vets paths the CLI writes to.
package pathutil
