// Package archive2 wraps Bethesda's Archive2.exe for packing and extracting
// BA2 archives.
package archive2
