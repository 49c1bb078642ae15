// Package archive maintains the plugin's "<name> - Main.ba2" archive on top of
// an external archiver back-end, including the extract and repack cycle used
// to merge a new folder into an existing archive.
package archive
