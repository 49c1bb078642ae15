// Package xedit runs FO4Edit/xEdit batch scripts unattended.
//
// xEdit keeps running after a script finishes, so a run is: write the plugin
// manifest, start the tool, poll for its log, let it settle, stop and reap the
// process, then classify the log.
package xedit
