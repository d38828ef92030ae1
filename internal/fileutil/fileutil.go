// Package fileutil holds file permission modes shared by the commands that
// write schemas to disk.
package fileutil

import "os"

// OwnerReadWrite is the file permission mode for resolved schema output
// (owner read/write only).
const OwnerReadWrite os.FileMode = 0o600
